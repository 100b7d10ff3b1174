package vectorstore

import (
	"Concierge/entity"
	"Concierge/internal/lib/api/response"
	"Concierge/internal/lib/sl"
	"errors"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"io"
	"log/slog"
	"net/http"
)

// Create replaces the store in use with a new one. The body is optional.
func Create(log *slog.Logger, handler Core) http.HandlerFunc {
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

		var req entity.VectorStoreCreate
		if err := render.Bind(r, &req); err != nil && !errors.Is(err, io.EOF) {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}

		attrs, err := handler.CreateVectorStore(r.Context(), req.Name, req.LifetimeDays)
		if err != nil {
			logger.Error("create vector store", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Create failed"))
			return
		}
		logger.With(slog.String("id", attrs.Id)).Info("vector store created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(attrs))
	}
}

// Switch makes an existing store the one used by file search.
func Switch(log *slog.Logger, handler Core) http.HandlerFunc {
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

		id := chi.URLParam(r, "vector_store_id")
		logger = logger.With(slog.String("vector_store_id", id))

		attrs, err := handler.SwitchVectorStore(r.Context(), id)
		if err != nil {
			logger.Error("switch vector store", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(fmt.Sprintf("Switch failed: %v", err)))
			return
		}
		logger.Info("vector store switched")

		render.JSON(w, r, response.Ok(attrs))
	}
}
