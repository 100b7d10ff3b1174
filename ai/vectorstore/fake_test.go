package vectorstore

import (
	"context"
	"fmt"
	"github.com/sashabaranov/go-openai"
	"io"
	"log/slog"
	"net/http"
	"sync"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAPI struct {
	mutex  sync.Mutex
	nextId int

	stores        map[string]openai.VectorStore
	storeOrder    []string
	createdStores []openai.VectorStoreRequest
	modified      []openai.VectorStoreRequest
	deletedStores []string

	// attached files per store
	storeFiles map[string][]string
	// statuses RetrieveVectorStoreFile walks through
	fileStatuses   []string
	fileRetrievals int

	uploads      []string
	uploadBytes  map[string][]byte
	purposes     []string
	deletedFiles []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		stores:      make(map[string]openai.VectorStore),
		storeFiles:  make(map[string][]string),
		uploadBytes: make(map[string][]byte),
	}
}

func notFound() error {
	return &openai.APIError{HTTPStatusCode: http.StatusNotFound, Message: "not found"}
}

func (f *fakeAPI) id(prefix string) string {
	f.nextId++
	return fmt.Sprintf("%s_%d", prefix, f.nextId)
}

func (f *fakeAPI) addStore(store openai.VectorStore) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.stores[store.ID] = store
	f.storeOrder = append(f.storeOrder, store.ID)
}

func (f *fakeAPI) CreateVectorStore(_ context.Context, request openai.VectorStoreRequest) (openai.VectorStore, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.createdStores = append(f.createdStores, request)
	store := openai.VectorStore{
		ID:           f.id("vs"),
		Name:         request.Name,
		Status:       "completed",
		ExpiresAfter: request.ExpiresAfter,
	}
	f.stores[store.ID] = store
	f.storeOrder = append(f.storeOrder, store.ID)
	return store, nil
}

func (f *fakeAPI) RetrieveVectorStore(_ context.Context, vectorStoreID string) (openai.VectorStore, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	store, ok := f.stores[vectorStoreID]
	if !ok {
		return openai.VectorStore{}, notFound()
	}
	store.FileCounts.Total = len(f.storeFiles[vectorStoreID])
	return store, nil
}

func (f *fakeAPI) ModifyVectorStore(_ context.Context, vectorStoreID string, request openai.VectorStoreRequest) (openai.VectorStore, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.modified = append(f.modified, request)
	store, ok := f.stores[vectorStoreID]
	if !ok {
		return openai.VectorStore{}, notFound()
	}
	store.Name = request.Name
	store.ExpiresAfter = request.ExpiresAfter
	f.stores[vectorStoreID] = store
	return store, nil
}

func (f *fakeAPI) DeleteVectorStore(_ context.Context, vectorStoreID string) (openai.VectorStoreDeleteResponse, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if _, ok := f.stores[vectorStoreID]; !ok {
		return openai.VectorStoreDeleteResponse{}, notFound()
	}
	delete(f.stores, vectorStoreID)
	f.deletedStores = append(f.deletedStores, vectorStoreID)
	return openai.VectorStoreDeleteResponse{ID: vectorStoreID, Deleted: true}, nil
}

func (f *fakeAPI) ListVectorStores(_ context.Context, _ openai.Pagination) (openai.VectorStoresList, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	var list openai.VectorStoresList
	for _, id := range f.storeOrder {
		if store, ok := f.stores[id]; ok {
			list.VectorStores = append(list.VectorStores, store)
		}
	}
	return list, nil
}

func (f *fakeAPI) CreateVectorStoreFile(_ context.Context, vectorStoreID string, request openai.VectorStoreFileRequest) (openai.VectorStoreFile, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.storeFiles[vectorStoreID] = append(f.storeFiles[vectorStoreID], request.FileID)
	return openai.VectorStoreFile{ID: request.FileID, VectorStoreID: vectorStoreID, Status: "in_progress"}, nil
}

func (f *fakeAPI) RetrieveVectorStoreFile(_ context.Context, vectorStoreID string, fileID string) (openai.VectorStoreFile, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	status := "completed"
	if f.fileRetrievals < len(f.fileStatuses) {
		status = f.fileStatuses[f.fileRetrievals]
	}
	f.fileRetrievals++
	return openai.VectorStoreFile{ID: fileID, VectorStoreID: vectorStoreID, Status: status}, nil
}

// ListVectorStoreFiles pages two files at a time.
func (f *fakeAPI) ListVectorStoreFiles(_ context.Context, vectorStoreID string, pagination openai.Pagination) (openai.VectorStoreFilesList, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	files := f.storeFiles[vectorStoreID]
	start := 0
	if pagination.After != nil {
		for i, id := range files {
			if id == *pagination.After {
				start = i + 1
			}
		}
	}
	end := start + 2
	if end > len(files) {
		end = len(files)
	}
	var list openai.VectorStoreFilesList
	for _, id := range files[start:end] {
		list.VectorStoreFiles = append(list.VectorStoreFiles, openai.VectorStoreFile{ID: id})
	}
	list.HasMore = end < len(files)
	if end > start {
		last := files[end-1]
		list.LastID = &last
	}
	return list, nil
}

func (f *fakeAPI) CreateFile(_ context.Context, request openai.FileRequest) (openai.File, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.uploads = append(f.uploads, request.FilePath)
	f.purposes = append(f.purposes, request.Purpose)
	return openai.File{ID: f.id("file"), FileName: request.FileName, Purpose: request.Purpose}, nil
}

func (f *fakeAPI) CreateFileBytes(_ context.Context, request openai.FileBytesRequest) (openai.File, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	id := f.id("file")
	f.uploads = append(f.uploads, request.Name)
	f.uploadBytes[id] = request.Bytes
	f.purposes = append(f.purposes, string(request.Purpose))
	return openai.File{ID: id, FileName: request.Name, Purpose: string(request.Purpose)}, nil
}

func (f *fakeAPI) DeleteFile(_ context.Context, fileID string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.deletedFiles = append(f.deletedFiles, fileID)
	return nil
}
