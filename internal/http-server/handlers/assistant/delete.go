package assistant

import (
	"Concierge/internal/lib/api/response"
	"Concierge/internal/lib/sl"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
)

func Delete(log *slog.Logger, handler Core) http.HandlerFunc {
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

		deleted, err := handler.DeleteAssistant(r.Context())
		if err != nil {
			logger.Error("delete assistant", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Delete failed"))
			return
		}
		logger.With(slog.Bool("deleted", deleted)).Info("assistant delete")

		render.JSON(w, r, response.Ok(map[string]bool{"deleted": deleted}))
	}
}
