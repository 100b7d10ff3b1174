package vectorstore

import (
	"Concierge/entity"
	"Concierge/internal/lib/api/response"
	"Concierge/internal/lib/sl"
	"fmt"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
)

func Modify(log *slog.Logger, handler Core) http.HandlerFunc {
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

		var req entity.VectorStoreUpdate
		if err := render.Bind(r, &req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}

		attrs, err := handler.ModifyVectorStore(r.Context(), req.Name, req.LifetimeDays)
		if err != nil {
			logger.Error("modify vector store", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Update failed"))
			return
		}
		logger.With(
			slog.String("name", req.Name),
			slog.Int("lifetime_days", req.LifetimeDays),
		).Debug("vector store modified")

		render.JSON(w, r, response.Ok(attrs))
	}
}
