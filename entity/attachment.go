package entity

import (
	"errors"
	"fmt"
)

// MaxFileSize is the maximum allowed size of an uploaded knowledge file (32 MB).
const MaxFileSize = 32 << 20

var ErrFileTooLarge = errors.New("file too large")

func FileTooLargeError(filename string, size int64) error {
	return fmt.Errorf("%w: %q is %d bytes, limit is %d MB", ErrFileTooLarge, filename, size, MaxFileSize>>20)
}

// FileMetadata is stored next to the archived copy of an uploaded file.
type FileMetadata struct {
	MIMEType      string `json:"mime_type" bson:"mime_type"`
	Purpose       string `json:"purpose" bson:"purpose"`
	FileId        string `json:"file_id" bson:"file_id"`
	VectorStoreId string `json:"vector_store_id" bson:"vector_store_id"`
}
