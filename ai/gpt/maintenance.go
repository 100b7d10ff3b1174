package gpt

import (
	"Concierge/entity"
	"Concierge/internal/lib/sl"
	"context"
	"fmt"
	"github.com/sashabaranov/go-openai"
	"log/slog"
	"time"
)

const (
	listLimit          = 100
	vectorStoreExpired = "expired"
)

var now = time.Now

// DeleteOldFiles removes uploaded files created before maxAge ago, except
// the ids in keep.
func DeleteOldFiles(ctx context.Context, api API, maxAge time.Duration, log *slog.Logger, keep ...string) (entity.CleanupReport, error) {
	var report entity.CleanupReport
	log = log.With(sl.Module("maintenance"))
	kept := keepSet(keep)

	files, err := api.ListFiles(ctx)
	if err != nil {
		return report, fmt.Errorf("list files: %w", err)
	}

	cutoff := now().Add(-maxAge)
	for _, file := range files.Files {
		if kept[file.ID] || !time.Unix(file.CreatedAt, 0).Before(cutoff) {
			continue
		}
		if err = api.DeleteFile(ctx, file.ID); err != nil && !IsNotFound(err) {
			log.With(slog.String("file", file.ID)).Error("deleting file", sl.Err(err))
			report.Failed++
			continue
		}
		report.Files++
	}
	return report, nil
}

// DeleteOldVectorStores removes stores created before maxAge ago and stores
// that already expired. Ids in keep survive unless expired.
func DeleteOldVectorStores(ctx context.Context, api API, maxAge time.Duration, log *slog.Logger, keep ...string) (entity.CleanupReport, error) {
	var report entity.CleanupReport
	log = log.With(sl.Module("maintenance"))
	kept := keepSet(keep)

	limit := listLimit
	stores, err := api.ListVectorStores(ctx, openai.Pagination{Limit: &limit})
	if err != nil {
		return report, fmt.Errorf("list vector stores: %w", err)
	}

	cutoff := now().Add(-maxAge)
	for _, store := range stores.VectorStores {
		expired := store.Status == vectorStoreExpired
		if !expired && (kept[store.ID] || !time.Unix(store.CreatedAt, 0).Before(cutoff)) {
			continue
		}
		if _, err = api.DeleteVectorStore(ctx, store.ID); err != nil && !IsNotFound(err) {
			log.With(slog.String("vector_store", store.ID)).Error("deleting vector store", sl.Err(err))
			report.Failed++
			continue
		}
		report.VectorStores++
	}
	return report, nil
}

// DeleteOldAssistants removes assistants created before maxAge ago, except
// the ids in keep.
func DeleteOldAssistants(ctx context.Context, api API, maxAge time.Duration, log *slog.Logger, keep ...string) (entity.CleanupReport, error) {
	var report entity.CleanupReport
	log = log.With(sl.Module("maintenance"))

	kept := keepSet(keep)

	limit := listLimit
	assistants, err := api.ListAssistants(ctx, &limit, nil, nil, nil)
	if err != nil {
		return report, fmt.Errorf("list assistants: %w", err)
	}

	cutoff := now().Add(-maxAge)
	for _, assistant := range assistants.Assistants {
		if kept[assistant.ID] || !time.Unix(assistant.CreatedAt, 0).Before(cutoff) {
			continue
		}
		if _, err = api.DeleteAssistant(ctx, assistant.ID); err != nil && !IsNotFound(err) {
			log.With(slog.String("assistant", assistant.ID)).Error("deleting assistant", sl.Err(err))
			report.Failed++
			continue
		}
		report.Assistants++
	}
	return report, nil
}

func keepSet(ids []string) map[string]bool {
	kept := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			kept[id] = true
		}
	}
	return kept
}
