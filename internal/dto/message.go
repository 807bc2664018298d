package dto

// FileMetadataDTO carries the envelope-mode chunk reference fields of
// §4.3 over the wire.
type FileMetadataDTO struct {
	FileID      string            `json:"fileId"`
	ChunkIndex  int               `json:"chunkIndex"`
	ChunkCount  int               `json:"chunkCount"`
	WrappedKeys map[string]string `json:"wrappedKeys,omitempty"`
}

// SendMessageReq is POST /messages (§6).
type SendMessageReq struct {
	To             string           `json:"to" binding:"required"`
	SessionID      string           `json:"sessionId" binding:"required"`
	Ciphertext     string           `json:"ciphertext" binding:"required,base64"`
	IV             string           `json:"iv" binding:"required,base64"`
	MessageType    string           `json:"messageType" binding:"required,oneof=text file"`
	SequenceNumber uint64           `json:"sequenceNumber" binding:"required"`
	Nonce          string           `json:"nonce" binding:"required,base64"`
	Timestamp      int64            `json:"timestamp" binding:"required"`
	FileMetadata   *FileMetadataDTO `json:"fileMetadata,omitempty"`
}

// SendMessageResp is the 201 response of POST /messages.
type SendMessageResp struct {
	MessageID string `json:"messageId"`
	Timestamp int64  `json:"timestamp"`
}

// MessageView is one element of GET /messages/conversation/{userId}.
type MessageView struct {
	MessageID      string `json:"messageId"`
	From           string `json:"from"`
	To             string `json:"to"`
	SessionID      string `json:"sessionId"`
	Ciphertext     string `json:"ciphertext"`
	IV             string `json:"iv"`
	MessageType    string `json:"messageType"`
	SequenceNumber uint64 `json:"sequenceNumber"`
	Timestamp      int64  `json:"timestamp"`
}
