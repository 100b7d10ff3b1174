package conversation

import (
	"Concierge/internal/lib/api/response"
	"Concierge/internal/lib/sl"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
)

func History(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.conversation")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("conversation service not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Conversation service not available"))
			return
		}

		userId := r.URL.Query().Get("user_id")
		if userId == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Missing user_id parameter"))
			return
		}
		logger = logger.With(slog.String("user_id", userId))

		messages, err := handler.History(r.Context(), userId)
		if err != nil {
			logger.Error("get history", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to get history"))
			return
		}
		logger.With(slog.Int("count", len(messages))).Debug("history")

		render.JSON(w, r, response.Ok(messages))
	}
}
