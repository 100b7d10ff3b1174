package key

import (
	"Concierge/entity"
	"Concierge/internal/lib/api/cont"
	"Concierge/internal/lib/api/response"
	"Concierge/internal/lib/sl"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
)

type Core interface {
	GenerateApiKey(username string) (string, error)
}

const adminUser = "admin"

// Generate issues a new API key. Only the admin key may call it.
func Generate(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.key"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("key service not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Key service not available"))
			return
		}

		user, err := cont.GetUser(r.Context())
		if err != nil || user.Username != adminUser {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("Forbidden"))
			return
		}

		var req entity.KeyRequest
		if err = render.Bind(r, &req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		key, err := handler.GenerateApiKey(req.Username)
		if err != nil {
			logger.Error("generate api key", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to generate key"))
			return
		}
		logger.With(
			slog.String("username", req.Username),
			sl.Secret("key", key),
		).Info("api key generated")

		render.JSON(w, r, response.Ok(map[string]string{"username": req.Username, "key": key}))
	}
}
