package vectorstore

import (
	"Concierge/entity"
	"Concierge/internal/lib/api/response"
	"Concierge/internal/lib/sl"
	"errors"
	"fmt"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
)

// Upload takes a multipart form with a "file" part and an optional "purpose"
// value and attaches the file to the vector store.
func Upload(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.vectorstore"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("vector store service not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Vector store service not available"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, entity.MaxFileSize+1<<20)
		if err := r.ParseMultipartForm(entity.MaxFileSize); err != nil {
			logger.Error("parse multipart form", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid multipart form"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("file is required"))
			return
		}
		defer file.Close()

		if header.Size > entity.MaxFileSize {
			render.Status(r, http.StatusRequestEntityTooLarge)
			render.JSON(w, r, response.Error(entity.FileTooLargeError(header.Filename, header.Size).Error()))
			return
		}

		purpose := r.FormValue("purpose")
		logger = logger.With(
			slog.String("filename", header.Filename),
			slog.Int64("size", header.Size),
			slog.String("purpose", purpose),
		)

		attached, err := handler.AttachFile(r.Context(), header.Filename, file, purpose)
		if err != nil {
			logger.Error("attach file", sl.Err(err))
			status := http.StatusInternalServerError
			if errors.Is(err, entity.ErrFileTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			render.Status(r, status)
			render.JSON(w, r, response.Error(fmt.Sprintf("Attach failed: %v", err)))
			return
		}
		logger.With(slog.String("file_id", attached.FileId)).Debug("file attached")

		render.JSON(w, r, response.Ok(attached))
	}
}
