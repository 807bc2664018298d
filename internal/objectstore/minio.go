// Package objectstore wires MinIO for the file-envelope chunk storage
// of §4.3/§9, grounded on the teacher's cloud_service.minioClient: a
// single bucket, one object per chunk, keyed by session and file id so
// a chunk list can be recovered with a prefix listing.
package objectstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Store struct {
	mc     *minio.Client
	bucket string
}

// New connects to MinIO and ensures the chunk bucket exists.
func New(ctx context.Context, endpoint, rootUser, rootPassword string, useSSL bool, bucket string) (*Store, error) {
	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(rootUser, rootPassword, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	exists, err := mc.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	return &Store{mc: mc, bucket: bucket}, nil
}

// ChunkKey builds the object key a FileMetadata.ObjectKey field stores:
// sessionID/fileID/chunkIndex, so a prefix listing recovers every chunk
// belonging to one file without a separate index table.
func ChunkKey(sessionID, fileID string, chunkIndex int) string {
	return fmt.Sprintf("%s/%s/%06d", sessionID, fileID, chunkIndex)
}

// PutChunk uploads one chunk's ciphertext.
func (s *Store) PutChunk(ctx context.Context, objectKey string, ciphertext []byte) error {
	_, err := s.mc.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(ciphertext), int64(len(ciphertext)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	return err
}

// GetChunk downloads one chunk's ciphertext.
func (s *Store) GetChunk(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := s.mc.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, info.Size)
	if _, err := obj.Read(buf); err != nil && err.Error() != "EOF" {
		return nil, err
	}
	return buf, nil
}

// DeleteChunks removes chunks 0..chunkCount-1 of one file. Nothing in
// this repository calls it; the janitor's expiry sweep does not delete
// chunks.
func (s *Store) DeleteChunks(ctx context.Context, sessionID, fileID string, chunkCount int) error {
	for i := 0; i < chunkCount; i++ {
		if err := s.mc.RemoveObject(ctx, s.bucket, ChunkKey(sessionID, fileID, i), minio.RemoveObjectOptions{}); err != nil {
			return err
		}
	}
	return nil
}
