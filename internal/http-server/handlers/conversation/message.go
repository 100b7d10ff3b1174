package conversation

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

func SendMessage(log *slog.Logger, handler Core) http.HandlerFunc {
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

		var req entity.HttpUserMsg
		if err := render.Bind(r, &req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}

		logger = logger.With(
			slog.String("user_id", req.UserId),
			slog.Int("attachments", len(req.Attachments)),
		)

		reply, err := handler.ComposeResponse(r.Context(), req.UserId, req.Message, req.Attachments)
		if err != nil {
			logger.Error("compose response", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(fmt.Sprintf("Compose failed: %v", err)))
			return
		}
		logger.With(
			slog.String("thread_id", reply.ThreadId),
			slog.String("run_id", reply.RunId),
		).Debug("compose response")

		render.JSON(w, r, response.Ok(reply))
	}
}
