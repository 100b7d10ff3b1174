package vectorstore

import (
	"Concierge/entity"
	"context"
	"io"
)

type Core interface {
	VectorStoreAttributes(ctx context.Context) (*entity.VectorStoreAttributes, error)
	ModifyVectorStore(ctx context.Context, name string, lifetimeDays int) (*entity.VectorStoreAttributes, error)
	CreateVectorStore(ctx context.Context, name string, lifetimeDays int) (*entity.VectorStoreAttributes, error)
	SwitchVectorStore(ctx context.Context, id string) (*entity.VectorStoreAttributes, error)
	DeleteVectorStore(ctx context.Context, deleteAttached bool) (bool, error)
	AttachFile(ctx context.Context, name string, data io.Reader, purpose string) (*entity.AttachedFile, error)
	AttachExistingFile(ctx context.Context, fileId string) (*entity.AttachedFile, error)
	ArchivedFile(id string) (string, entity.FileMetadata, io.ReadCloser, error)
}
