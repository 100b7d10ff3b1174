package vectorstore

import (
	"Concierge/internal/lib/fileurl"
	"Concierge/internal/lib/sl"
	"fmt"
	"github.com/go-chi/chi/v5"
	"io"
	"log/slog"
	"net/http"
)

// DownloadArchived streams the archived copy of an uploaded file. With a
// non-empty secret the link must carry a valid signature.
func DownloadArchived(log *slog.Logger, handler Core, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if handler == nil {
			http.Error(w, "Vector store service not available", http.StatusServiceUnavailable)
			return
		}

		archiveId := chi.URLParam(r, "archive_id")
		if archiveId == "" {
			http.Error(w, "archive_id is required", http.StatusBadRequest)
			return
		}

		if secret != "" {
			query := r.URL.Query()
			if !fileurl.Verify(archiveId, query.Get("expires"), query.Get("sig"), secret) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}

		filename, meta, reader, err := handler.ArchivedFile(archiveId)
		if err != nil {
			log.Error("failed to open archived file",
				slog.String("archive_id", archiveId),
				sl.Err(err),
			)
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		defer reader.Close()

		if meta.MIMEType != "" {
			w.Header().Set("Content-Type", meta.MIMEType)
		} else {
			w.Header().Set("Content-Type", "application/octet-stream")
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

		if _, err = io.Copy(w, reader); err != nil {
			log.Error("failed to stream file",
				slog.String("archive_id", archiveId),
				sl.Err(err),
			)
		}
	}
}
