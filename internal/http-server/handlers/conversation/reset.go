package conversation

import (
	"Concierge/entity"
	"Concierge/internal/lib/api/response"
	"Concierge/internal/lib/sl"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
)

func ResetConversation(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.conversation"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("reset conversation not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Reset conversation not available"))
			return
		}

		var req entity.HttpUserRef
		if err := render.Bind(r, &req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Missing user_id"))
			return
		}

		err := handler.ResetConversation(r.Context(), req.UserId)
		if err != nil {
			logger.Error("reset conversation", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Reset failed: "+err.Error()))
			return
		}

		render.JSON(w, r, response.Ok("Conversation reset successfully"))
	}
}
