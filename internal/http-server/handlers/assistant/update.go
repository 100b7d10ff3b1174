package assistant

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

func UpdateTools(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.assistant")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("assistant service not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Assistant service not available"))
			return
		}

		var req entity.ToolSet
		if err := render.Bind(r, &req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}

		err := handler.UpdateTools(r.Context(), req.Tools, req.VectorStoreId)
		if err != nil {
			logger.Error("update tools", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Update failed"))
			return
		}

		logger.With(
			slog.Any("tools", req.Tools),
			slog.String("vector_store_id", req.VectorStoreId),
		).Debug("assistant tools updated")

		render.JSON(w, r, response.Ok("Assistant updated successfully"))
	}
}
