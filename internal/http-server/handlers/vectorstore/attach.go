package vectorstore

import (
	"Concierge/internal/lib/api/response"
	"Concierge/internal/lib/sl"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
)

func AttachExisting(log *slog.Logger, handler Core) http.HandlerFunc {
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

		fileId := chi.URLParam(r, "file_id")
		if fileId == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("file_id is required"))
			return
		}
		logger = logger.With(slog.String("file_id", fileId))

		attached, err := handler.AttachExistingFile(r.Context(), fileId)
		if err != nil {
			logger.Error("attach existing file", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(fmt.Sprintf("Attach failed: %v", err)))
			return
		}

		render.JSON(w, r, response.Ok(attached))
	}
}
