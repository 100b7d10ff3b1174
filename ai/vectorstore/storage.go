package vectorstore

import (
	"Concierge/ai/gpt"
	"Concierge/entity"
	"Concierge/internal/lib/sl"
	"context"
	"errors"
	"fmt"
	"github.com/sashabaranov/go-openai"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"sync"
	"time"
)

const (
	DefaultName         = "Vector_Storage"
	DefaultLifetimeDays = 1

	anchorLastActive = "last_active_at"
	statusExpired    = "expired"
	statusInProgress = "in_progress"
	pageLimit        = 100
)

var ErrNoVectorStore = errors.New("vector store is deleted")

// API is the part of the vector store and file endpoints used by Storage.
type API interface {
	CreateVectorStore(ctx context.Context, request openai.VectorStoreRequest) (openai.VectorStore, error)
	RetrieveVectorStore(ctx context.Context, vectorStoreID string) (openai.VectorStore, error)
	ModifyVectorStore(ctx context.Context, vectorStoreID string, request openai.VectorStoreRequest) (openai.VectorStore, error)
	DeleteVectorStore(ctx context.Context, vectorStoreID string) (openai.VectorStoreDeleteResponse, error)
	ListVectorStores(ctx context.Context, pagination openai.Pagination) (openai.VectorStoresList, error)

	CreateVectorStoreFile(ctx context.Context, vectorStoreID string, request openai.VectorStoreFileRequest) (openai.VectorStoreFile, error)
	RetrieveVectorStoreFile(ctx context.Context, vectorStoreID string, fileID string) (openai.VectorStoreFile, error)
	ListVectorStoreFiles(ctx context.Context, vectorStoreID string, pagination openai.Pagination) (openai.VectorStoreFilesList, error)

	CreateFile(ctx context.Context, request openai.FileRequest) (openai.File, error)
	CreateFileBytes(ctx context.Context, request openai.FileBytesRequest) (openai.File, error)
	DeleteFile(ctx context.Context, fileID string) error
}

type Option func(*Storage)

// WithPollInterval sets how often file attachment status is checked.
func WithPollInterval(d time.Duration) Option {
	return func(s *Storage) {
		s.pollInterval = d
	}
}

// Storage wraps one remote vector store used by file search.
type Storage struct {
	api          API
	store        *openai.VectorStore
	name         string
	lifetimeDays int
	pollInterval time.Duration
	mutex        sync.RWMutex
	log          *slog.Logger
}

func newStorage(api API, log *slog.Logger, opts []Option) *Storage {
	s := &Storage{
		api:          api,
		name:         DefaultName,
		lifetimeDays: DefaultLifetimeDays,
		pollInterval: 500 * time.Millisecond,
		log:          log.With(sl.Module("vector-store")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New creates a store that expires lifetimeDays after its last activity.
func New(ctx context.Context, api API, name string, lifetimeDays int, log *slog.Logger, opts ...Option) (*Storage, error) {
	s := newStorage(api, log, opts)
	if name != "" {
		s.name = name
	}
	if lifetimeDays > 0 {
		s.lifetimeDays = lifetimeDays
	}

	store, err := api.CreateVectorStore(ctx, openai.VectorStoreRequest{
		Name:         s.name,
		ExpiresAfter: expiresAfter(s.lifetimeDays),
	})
	if err != nil {
		return nil, fmt.Errorf("create vector store: %w", err)
	}
	s.store = &store
	s.log.With(
		slog.String("id", store.ID),
		slog.String("name", store.Name),
		slog.Int("lifetime_days", s.lifetimeDays),
	).Info("vector store created")
	return s, nil
}

// Open wraps an existing store.
func Open(ctx context.Context, api API, id string, log *slog.Logger, opts ...Option) (*Storage, error) {
	s := newStorage(api, log, opts)
	store, err := api.RetrieveVectorStore(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("retrieve vector store: %w", err)
	}
	s.adopt(store)
	return s, nil
}

// FindOrCreate uses the first store that has not expired and creates a new
// one, seeded with the given local files, when there is none.
func FindOrCreate(ctx context.Context, api API, name string, lifetimeDays int, seedFiles []string, log *slog.Logger, opts ...Option) (*Storage, error) {
	limit := pageLimit
	list, err := api.ListVectorStores(ctx, openai.Pagination{Limit: &limit})
	if err != nil {
		return nil, fmt.Errorf("list vector stores: %w", err)
	}
	for _, store := range list.VectorStores {
		if store.Status == statusExpired {
			continue
		}
		s := newStorage(api, log, opts)
		s.adopt(store)
		s.log.With(slog.String("id", store.ID)).Info("using existing vector store")
		return s, nil
	}

	s, err := New(ctx, api, name, lifetimeDays, log, opts...)
	if err != nil {
		return nil, err
	}
	for _, path := range seedFiles {
		if _, err = s.AttachNewFile(ctx, path, string(openai.PurposeAssistants)); err != nil {
			return s, fmt.Errorf("seed file %s: %w", path, err)
		}
	}
	return s, nil
}

func (s *Storage) adopt(store openai.VectorStore) {
	s.store = &store
	if store.Name != "" {
		s.name = store.Name
	}
	if store.ExpiresAfter != nil && store.ExpiresAfter.Days > 0 {
		s.lifetimeDays = store.ExpiresAfter.Days
	}
}

func expiresAfter(days int) *openai.VectorStoreExpires {
	return &openai.VectorStoreExpires{Anchor: anchorLastActive, Days: days}
}

func (s *Storage) ID() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.store == nil {
		return ""
	}
	return s.store.ID
}

// Retrieve switches the storage to another store. The current store is
// deleted once the new one is found.
func (s *Storage) Retrieve(ctx context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	store, err := s.api.RetrieveVectorStore(ctx, id)
	if err != nil {
		return fmt.Errorf("retrieve vector store: %w", err)
	}

	if s.store != nil && s.store.ID != id {
		if _, err = s.api.DeleteVectorStore(ctx, s.store.ID); err != nil && !gpt.IsNotFound(err) {
			return fmt.Errorf("delete current vector store: %w", err)
		}
		s.log.With(slog.String("id", s.store.ID)).Info("replaced vector store deleted")
	}
	s.adopt(store)
	return nil
}

// Delete removes the store, and with deleteAttached every file attached to
// it from file storage as well.
func (s *Storage) Delete(ctx context.Context, deleteAttached bool) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.store == nil {
		return false, ErrNoVectorStore
	}
	id := s.store.ID
	log := s.log.With(slog.String("id", id))

	if deleteAttached {
		fileIds, err := s.listFileIds(ctx, id)
		if err != nil {
			return false, err
		}
		for _, fileId := range fileIds {
			if err = s.api.DeleteFile(ctx, fileId); err != nil && !gpt.IsNotFound(err) {
				log.With(slog.String("file", fileId)).Error("deleting attached file", sl.Err(err))
			}
		}
		log.With(slog.Int("files", len(fileIds))).Debug("attached files deleted")
	}

	deleted := true
	resp, err := s.api.DeleteVectorStore(ctx, id)
	if err != nil {
		if !gpt.IsNotFound(err) {
			return false, fmt.Errorf("delete vector store: %w", err)
		}
	} else {
		deleted = resp.Deleted
	}
	if deleted {
		s.store = nil
		log.Info("vector store deleted")
	}
	return deleted, nil
}

// FileIds lists the ids of every file attached to the store.
func (s *Storage) FileIds(ctx context.Context) ([]string, error) {
	id := s.ID()
	if id == "" {
		return nil, ErrNoVectorStore
	}
	return s.listFileIds(ctx, id)
}

func (s *Storage) listFileIds(ctx context.Context, id string) ([]string, error) {
	var fileIds []string
	limit := pageLimit
	var after *string
	for {
		page, err := s.api.ListVectorStoreFiles(ctx, id, openai.Pagination{Limit: &limit, After: after})
		if err != nil {
			return nil, fmt.Errorf("list vector store files: %w", err)
		}
		for _, file := range page.VectorStoreFiles {
			fileIds = append(fileIds, file.ID)
		}
		if !page.HasMore || page.LastID == nil || len(page.VectorStoreFiles) == 0 {
			return fileIds, nil
		}
		after = page.LastID
	}
}

// Modify renames the store or changes its lifetime. Zero values keep the
// current settings.
func (s *Storage) Modify(ctx context.Context, name string, lifetimeDays int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.store == nil {
		return ErrNoVectorStore
	}
	if name == "" {
		name = s.name
	}
	if lifetimeDays <= 0 {
		lifetimeDays = s.lifetimeDays
	}

	store, err := s.api.ModifyVectorStore(ctx, s.store.ID, openai.VectorStoreRequest{
		Name:         name,
		ExpiresAfter: expiresAfter(lifetimeDays),
	})
	if err != nil {
		return fmt.Errorf("modify vector store: %w", err)
	}
	s.store = &store
	s.name = name
	s.lifetimeDays = lifetimeDays
	return nil
}

// Attributes fetches the current state of the store.
func (s *Storage) Attributes(ctx context.Context) (entity.VectorStoreAttributes, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.store == nil {
		return entity.VectorStoreAttributes{}, ErrNoVectorStore
	}
	store, err := s.api.RetrieveVectorStore(ctx, s.store.ID)
	if err != nil {
		return entity.VectorStoreAttributes{}, fmt.Errorf("retrieve vector store: %w", err)
	}
	s.store = &store

	return entity.VectorStoreAttributes{
		Id:                  store.ID,
		Name:                store.Name,
		Status:              store.Status,
		CreatedAt:           time.Unix(store.CreatedAt, 0),
		DaysUntilExpiration: s.daysUntilExpiration(store),
		FileCount:           store.FileCounts.Total,
		UsageBytes:          store.UsageBytes,
	}, nil
}

func (s *Storage) daysUntilExpiration(store openai.VectorStore) int {
	if store.ExpiresAt == nil {
		return s.lifetimeDays
	}
	left := time.Until(time.Unix(int64(*store.ExpiresAt), 0))
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours() / 24))
}

// AttachExistingFile adds an uploaded file to the store and waits until
// indexing leaves the in_progress state.
func (s *Storage) AttachExistingFile(ctx context.Context, fileId string) (string, error) {
	id := s.ID()
	if id == "" {
		return "", ErrNoVectorStore
	}

	file, err := s.api.CreateVectorStoreFile(ctx, id, openai.VectorStoreFileRequest{FileID: fileId})
	if err != nil {
		return "", fmt.Errorf("create vector store file: %w", err)
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for file.Status == statusInProgress {
		select {
		case <-ctx.Done():
			return file.Status, ctx.Err()
		case <-ticker.C:
		}
		file, err = s.api.RetrieveVectorStoreFile(ctx, id, fileId)
		if err != nil {
			return "", fmt.Errorf("retrieve vector store file: %w", err)
		}
	}

	s.log.With(
		slog.String("file", fileId),
		slog.String("status", file.Status),
	).Debug("file attached")
	return file.Status, nil
}

// AttachNewFile uploads a local file and attaches it.
func (s *Storage) AttachNewFile(ctx context.Context, path, purpose string) (entity.AttachedFile, error) {
	if s.ID() == "" {
		return entity.AttachedFile{}, ErrNoVectorStore
	}
	file, err := s.api.CreateFile(ctx, openai.FileRequest{
		FileName: filepath.Base(path),
		FilePath: path,
		Purpose:  string(NormalizePurpose(purpose)),
	})
	if err != nil {
		return entity.AttachedFile{}, fmt.Errorf("upload file: %w", err)
	}
	return s.attachUploaded(ctx, file)
}

// AttachReader uploads data under the given file name and attaches it.
func (s *Storage) AttachReader(ctx context.Context, name string, data io.Reader, purpose string) (entity.AttachedFile, error) {
	if s.ID() == "" {
		return entity.AttachedFile{}, ErrNoVectorStore
	}
	content, err := io.ReadAll(data)
	if err != nil {
		return entity.AttachedFile{}, fmt.Errorf("read file: %w", err)
	}
	file, err := s.api.CreateFileBytes(ctx, openai.FileBytesRequest{
		Name:    name,
		Bytes:   content,
		Purpose: NormalizePurpose(purpose),
	})
	if err != nil {
		return entity.AttachedFile{}, fmt.Errorf("upload file: %w", err)
	}
	return s.attachUploaded(ctx, file)
}

func (s *Storage) attachUploaded(ctx context.Context, file openai.File) (entity.AttachedFile, error) {
	status, err := s.AttachExistingFile(ctx, file.ID)
	return entity.AttachedFile{
		FileId: file.ID,
		Name:   file.FileName,
		Status: status,
	}, err
}

const purposeVision openai.PurposeType = "vision"

// NormalizePurpose maps unsupported upload purposes to assistants.
func NormalizePurpose(purpose string) openai.PurposeType {
	switch p := openai.PurposeType(purpose); p {
	case openai.PurposeAssistants, openai.PurposeFineTune, openai.PurposeBatch, purposeVision:
		return p
	default:
		return openai.PurposeAssistants
	}
}
