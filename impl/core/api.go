package core

import (
	"Concierge/ai/gpt"
	"Concierge/ai/vectorstore"
	"Concierge/entity"
	"Concierge/internal/lib/fileurl"
	"Concierge/internal/lib/sl"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

func (c *Core) AssistantInfo() (*entity.AssistantInfo, error) {
	assistant := c.getAssistant()
	if assistant == nil {
		return nil, ErrNotReady
	}
	return &entity.AssistantInfo{
		Profile:         assistant.Profile(),
		Characteristics: assistant.Characteristics(),
		Functions:       assistant.Functions(),
	}, nil
}

// UpdateTools replaces the assistant's built-in tools. An empty vector store
// id keeps the current store.
func (c *Core) UpdateTools(ctx context.Context, tools []string, vectorStoreId string) error {
	assistant := c.getAssistant()
	if assistant == nil {
		return ErrNotReady
	}
	if vectorStoreId == "" {
		if storage := c.getStorage(); storage != nil {
			vectorStoreId = storage.ID()
		}
	}

	if err := assistant.UpdateToolSet(ctx, tools, vectorStoreId); err != nil {
		return err
	}
	c.saveProfile()
	return nil
}

func (c *Core) DeleteAssistant(ctx context.Context) (bool, error) {
	assistant := c.getAssistant()
	if assistant == nil {
		return false, ErrNotReady
	}
	deleted, err := assistant.Delete(ctx)
	if err != nil {
		return false, err
	}
	c.saveProfile()
	return deleted, nil
}

func (c *Core) VectorStoreAttributes(ctx context.Context) (*entity.VectorStoreAttributes, error) {
	storage := c.getStorage()
	if storage == nil {
		return nil, ErrNotReady
	}
	attrs, err := storage.Attributes(ctx)
	if err != nil {
		return nil, err
	}
	return &attrs, nil
}

func (c *Core) ModifyVectorStore(ctx context.Context, name string, lifetimeDays int) (*entity.VectorStoreAttributes, error) {
	storage := c.getStorage()
	if storage == nil {
		return nil, ErrNotReady
	}
	if err := storage.Modify(ctx, name, lifetimeDays); err != nil {
		return nil, err
	}
	return c.VectorStoreAttributes(ctx)
}

// AttachFile uploads data and adds it to the assistant's vector store. A copy
// is archived in the repository when one is set.
func (c *Core) AttachFile(ctx context.Context, name string, data io.Reader, purpose string) (*entity.AttachedFile, error) {
	storage := c.getStorage()
	if storage == nil {
		return nil, ErrNotReady
	}
	content, err := io.ReadAll(io.LimitReader(data, entity.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(content) > entity.MaxFileSize {
		return nil, entity.FileTooLargeError(name, int64(len(content)))
	}

	attached, err := storage.AttachReader(ctx, name, bytes.NewReader(content), purpose)
	if err != nil {
		return nil, err
	}
	log := c.log.With(
		slog.String("file", attached.FileId),
		slog.String("name", name),
		slog.String("status", attached.Status),
	)

	if c.repo != nil {
		archiveId, _, err := c.repo.ArchiveFile(name, bytes.NewReader(content), entity.FileMetadata{
			MIMEType:      http.DetectContentType(content),
			Purpose:       string(vectorstore.NormalizePurpose(purpose)),
			FileId:        attached.FileId,
			VectorStoreId: storage.ID(),
		})
		if err != nil {
			log.Error("archiving file", sl.Err(err))
		}
		attached.ArchiveId = archiveId
		if archiveId != "" && c.conf.Listen.UrlSecret != "" {
			attached.ArchiveURL = fileurl.SignURL(archiveId, c.conf.Listen.UrlSecret, c.conf.Listen.UrlTTL)
		}
	}

	log.Info("file attached")
	return &attached, nil
}

// ArchivedFile opens the archived copy of an uploaded file.
func (c *Core) ArchivedFile(id string) (string, entity.FileMetadata, io.ReadCloser, error) {
	if c.repo == nil {
		return "", entity.FileMetadata{}, nil, fmt.Errorf("repository is not set")
	}
	return c.repo.ArchivedFile(id)
}

func (c *Core) AttachExistingFile(ctx context.Context, fileId string) (*entity.AttachedFile, error) {
	storage := c.getStorage()
	if storage == nil {
		return nil, ErrNotReady
	}
	status, err := storage.AttachExistingFile(ctx, fileId)
	if err != nil {
		return nil, err
	}
	return &entity.AttachedFile{FileId: fileId, Status: status}, nil
}

// DeleteVectorStore removes the store and detaches it from the assistant.
func (c *Core) DeleteVectorStore(ctx context.Context, deleteAttached bool) (bool, error) {
	storage := c.getStorage()
	if storage == nil {
		return false, ErrNotReady
	}
	deleted, err := storage.Delete(ctx, deleteAttached)
	if err != nil {
		return false, err
	}

	assistant := c.getAssistant()
	if deleted && assistant != nil && assistant.ID() != "" {
		profile := assistant.Profile()
		if err = assistant.UpdateToolSet(ctx, profile.Tools, ""); err != nil {
			c.log.Error("detaching vector store", sl.Err(err))
		}
		c.saveProfile()
	}
	return deleted, nil
}

// CreateVectorStore starts a fresh store for file search. The store in use,
// if any, is deleted without its files and the assistant points at the new one.
func (c *Core) CreateVectorStore(ctx context.Context, name string, lifetimeDays int) (*entity.VectorStoreAttributes, error) {
	if c.api == nil {
		return nil, ErrNotReady
	}
	if name == "" {
		name = c.conf.VectorStore.Name
	}
	if lifetimeDays <= 0 {
		lifetimeDays = c.conf.VectorStore.LifetimeDays
	}

	storage, err := vectorstore.New(ctx, c.api, name, lifetimeDays, c.log)
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	previous := c.storage
	c.storage = storage
	c.mutex.Unlock()

	if previous != nil && previous.ID() != "" {
		if _, err = previous.Delete(ctx, false); err != nil {
			c.log.With(slog.String("id", previous.ID())).Error("deleting replaced vector store", sl.Err(err))
		}
	}

	if err = c.pointAssistantAt(ctx, storage.ID()); err != nil {
		return nil, err
	}
	return c.VectorStoreAttributes(ctx)
}

// SwitchVectorStore makes an existing store the one used by file search. The
// store in use is deleted once the target is found.
func (c *Core) SwitchVectorStore(ctx context.Context, id string) (*entity.VectorStoreAttributes, error) {
	storage := c.getStorage()
	if storage == nil {
		return nil, ErrNotReady
	}
	if err := storage.Retrieve(ctx, id); err != nil {
		return nil, err
	}
	if err := c.pointAssistantAt(ctx, storage.ID()); err != nil {
		return nil, err
	}
	return c.VectorStoreAttributes(ctx)
}

func (c *Core) pointAssistantAt(ctx context.Context, vectorStoreId string) error {
	assistant := c.getAssistant()
	if assistant == nil || assistant.ID() == "" {
		return nil
	}
	profile := assistant.Profile()
	if err := assistant.UpdateToolSet(ctx, profile.Tools, vectorStoreId); err != nil {
		return fmt.Errorf("attach vector store to assistant: %w", err)
	}
	c.saveProfile()
	return nil
}

// RunMaintenance sweeps old remote objects, keeping the ones in use.
func (c *Core) RunMaintenance(ctx context.Context) (*entity.CleanupReport, error) {
	assistantId := ""
	if assistant := c.getAssistant(); assistant != nil {
		assistantId = assistant.ID()
	}
	report, err := c.cleanup(ctx, assistantId, c.getStorage())
	if err != nil {
		return nil, err
	}
	c.log.With(
		slog.Int("files", report.Files),
		slog.Int("vector_stores", report.VectorStores),
		slog.Int("assistants", report.Assistants),
		slog.Int("failed", report.Failed),
	).Info("maintenance done")

	if c.notifier != nil && (report.Total() > 0 || report.Failed > 0) {
		c.notifier.SendMessage(fmt.Sprintf("Maintenance removed %d files, %d vector stores, %d assistants; %d failed",
			report.Files, report.VectorStores, report.Assistants, report.Failed))
	}
	return &report, nil
}

func (c *Core) cleanup(ctx context.Context, assistantId string, storage *vectorstore.Storage) (entity.CleanupReport, error) {
	var report entity.CleanupReport
	maxAge := c.conf.MaxAge()

	var keepFiles []string
	storeId := ""
	if storage != nil && storage.ID() != "" {
		storeId = storage.ID()
		fileIds, err := storage.FileIds(ctx)
		if err != nil {
			return report, fmt.Errorf("list attached files: %w", err)
		}
		keepFiles = fileIds
	}

	files, err := gpt.DeleteOldFiles(ctx, c.api, maxAge, c.log, keepFiles...)
	if err != nil {
		return report, err
	}
	report.Add(files)

	stores, err := gpt.DeleteOldVectorStores(ctx, c.api, maxAge, c.log, storeId)
	if err != nil {
		return report, err
	}
	report.Add(stores)

	assistants, err := gpt.DeleteOldAssistants(ctx, c.api, maxAge, c.log, assistantId)
	if err != nil {
		return report, err
	}
	report.Add(assistants)

	return report, nil
}
