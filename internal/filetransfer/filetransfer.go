// Package filetransfer implements envelope-mode file sends (§4.3, §9):
// a file is split into independent 256 KiB plaintext chunks, each
// sealed under its own IV but the same per-file key, and the per-file
// key itself is sealed ("wrapped") once per recipient under that
// recipient's channel session key so only a holder of the completed
// session can unwrap it.
package filetransfer

import (
	"encoding/base64"

	"github.com/relaycore/securemsg/internal/channel"
	"github.com/relaycore/securemsg/internal/crypto"
	"github.com/relaycore/securemsg/internal/domain"
	"github.com/relaycore/securemsg/internal/dto"
)

// ChunkSize is the fixed plaintext chunk size (§4.3, §9).
const ChunkSize = channel.MaxPlaintextSize

// SealedChunk is one chunk ready to upload plus the FileMetadata the
// message envelope carries alongside it.
type SealedChunk struct {
	Ciphertext []byte
	IV         []byte
	Meta       *domain.FileMetadata
}

// Split breaks plaintext into ChunkSize pieces, in order.
func Split(plaintext []byte) [][]byte {
	if len(plaintext) == 0 {
		return [][]byte{{}}
	}
	var chunks [][]byte
	for off := 0; off < len(plaintext); off += ChunkSize {
		end := off + ChunkSize
		if end > len(plaintext) {
			end = len(plaintext)
		}
		chunks = append(chunks, plaintext[off:end])
	}
	return chunks
}

// SealFile generates a fresh per-file key, wraps it for every recipient
// in recipientKeys (userID -> that recipient's channel session key),
// and seals every chunk under the per-file key with an independent IV.
func SealFile(fileID string, plaintext []byte, recipientKeys map[string][]byte) ([]*SealedChunk, error) {
	fileKey, err := crypto.RandomBytes(32)
	if err != nil {
		return nil, err
	}

	wrapped := make(map[string][]byte, len(recipientKeys))
	for userID, sessionKey := range recipientKeys {
		iv, err := crypto.RandomBytes(crypto.GCMNonceSize)
		if err != nil {
			return nil, err
		}
		sealedKey, err := crypto.SealGCM(sessionKey, iv, fileKey)
		if err != nil {
			return nil, err
		}
		// iv prepended so the unwrap side needs only the session key.
		wrapped[userID] = append(iv, sealedKey...)
	}

	chunks := Split(plaintext)
	out := make([]*SealedChunk, 0, len(chunks))
	for idx, plain := range chunks {
		iv, err := crypto.RandomBytes(crypto.GCMNonceSize)
		if err != nil {
			return nil, err
		}
		ct, err := crypto.SealGCM(fileKey, iv, plain)
		if err != nil {
			return nil, err
		}
		out = append(out, &SealedChunk{
			Ciphertext: ct,
			IV:         iv,
			Meta: &domain.FileMetadata{
				FileID:       fileID,
				ChunkIndex:   idx,
				ChunkCount:   len(chunks),
				WrappedKeys:  wrapped,
				PlaintextLen: len(plain),
			},
		})
	}
	return out, nil
}

// UnwrapFileKey recovers the per-file key from the blob this recipient
// received, using its own channel session key.
func UnwrapFileKey(sessionKey, wrapped []byte) ([]byte, error) {
	if len(wrapped) < crypto.GCMNonceSize {
		return nil, domain.NewError(domain.CodeAuthFailed, "filetransfer.unwrap", nil)
	}
	iv := wrapped[:crypto.GCMNonceSize]
	sealed := wrapped[crypto.GCMNonceSize:]
	key, err := crypto.OpenGCM(sessionKey, iv, sealed)
	if err != nil {
		return nil, domain.NewError(domain.CodeAuthFailed, "filetransfer.unwrap", err)
	}
	return key, nil
}

// OpenChunk decrypts one chunk under the unwrapped per-file key.
func OpenChunk(fileKey, iv, ciphertext []byte) ([]byte, error) {
	pt, err := crypto.OpenGCM(fileKey, iv, ciphertext)
	if err != nil {
		return nil, domain.NewError(domain.CodeAuthFailed, "filetransfer.openChunk", err)
	}
	return pt, nil
}

// ToDTO builds the wire FileMetadataDTO for one sealed chunk.
func ToDTO(meta *domain.FileMetadata) *dto.FileMetadataDTO {
	wrapped := make(map[string]string, len(meta.WrappedKeys))
	for user, blob := range meta.WrappedKeys {
		wrapped[user] = base64.StdEncoding.EncodeToString(blob)
	}
	return &dto.FileMetadataDTO{
		FileID:      meta.FileID,
		ChunkIndex:  meta.ChunkIndex,
		ChunkCount:  meta.ChunkCount,
		WrappedKeys: wrapped,
	}
}
