package maintenance

import (
	"Concierge/entity"
	"Concierge/internal/lib/api/response"
	"Concierge/internal/lib/sl"
	"context"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
)

type Core interface {
	RunMaintenance(ctx context.Context) (*entity.CleanupReport, error)
}

// Cleanup deletes old files, vector stores and assistants now instead of
// waiting for the daily run.
func Cleanup(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.maintenance"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("maintenance not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Maintenance not available"))
			return
		}

		report, err := handler.RunMaintenance(r.Context())
		if err != nil {
			logger.Error("run maintenance", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Maintenance failed"))
			return
		}

		render.JSON(w, r, response.Ok(report))
	}
}
