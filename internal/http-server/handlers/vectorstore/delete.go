package vectorstore

import (
	"Concierge/internal/lib/api/response"
	"Concierge/internal/lib/sl"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"strconv"
)

// Delete removes the vector store. With ?files=true the attached files are
// deleted as well.
func Delete(log *slog.Logger, handler Core) http.HandlerFunc {
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

		deleteFiles := false
		if value := r.URL.Query().Get("files"); value != "" {
			parsed, err := strconv.ParseBool(value)
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("Invalid files parameter"))
				return
			}
			deleteFiles = parsed
		}

		deleted, err := handler.DeleteVectorStore(r.Context(), deleteFiles)
		if err != nil {
			logger.Error("delete vector store", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Delete failed"))
			return
		}
		logger.With(
			slog.Bool("deleted", deleted),
			slog.Bool("files", deleteFiles),
		).Info("vector store delete")

		render.JSON(w, r, response.Ok(map[string]bool{"deleted": deleted}))
	}
}
