package api

import (
	"Concierge/internal/config"
	"Concierge/internal/http-server/handlers/assistant"
	"Concierge/internal/http-server/handlers/conversation"
	"Concierge/internal/http-server/handlers/errors"
	"Concierge/internal/http-server/handlers/key"
	"Concierge/internal/http-server/handlers/maintenance"
	"Concierge/internal/http-server/handlers/vectorstore"
	"Concierge/internal/http-server/middleware/authenticate"
	"Concierge/internal/lib/sl"
	"Concierge/internal/ws"
	"context"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net"
	"net/http"
	"time"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	conversation.Core
	assistant.Core
	vectorstore.Core
	maintenance.Core
	key.Core
}

// NewRouter builds the routes. The websocket endpoint authenticates with a
// query token and signed archive links carry their own signature. Every other
// route needs the bearer header.
func NewRouter(conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Route("/api/v1", func(v1 chi.Router) {
		if hub != nil {
			v1.Get("/ws", ws.ServeWs(hub, handler, log))
		}
		if conf.Listen.UrlSecret != "" {
			v1.Get("/archive/{archive_id}", vectorstore.DownloadArchived(log, handler, conf.Listen.UrlSecret))
		}

		v1.Group(func(r chi.Router) {
			if conf.Listen.Timeout > 0 {
				r.Use(middleware.Timeout(conf.Listen.Timeout))
			}
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Use(authenticate.New(log, handler))

			r.Route("/conversation", func(r chi.Router) {
				r.Post("/message", conversation.SendMessage(log, handler))
				r.Get("/history", conversation.History(log, handler))
				r.Post("/reset", conversation.ResetConversation(log, handler))
			})
			r.Route("/assistant", func(r chi.Router) {
				r.Get("/", assistant.Info(log, handler))
				r.Post("/tools", assistant.UpdateTools(log, handler))
				r.Delete("/", assistant.Delete(log, handler))
			})
			r.Route("/vector-store", func(r chi.Router) {
				r.Get("/", vectorstore.Attributes(log, handler))
				r.Post("/", vectorstore.Create(log, handler))
				r.Patch("/", vectorstore.Modify(log, handler))
				r.Put("/{vector_store_id}", vectorstore.Switch(log, handler))
				r.Delete("/", vectorstore.Delete(log, handler))
				r.Post("/files", vectorstore.Upload(log, handler))
				r.Post("/files/{file_id}", vectorstore.AttachExisting(log, handler))
				r.Get("/archive/{archive_id}", vectorstore.DownloadArchived(log, handler, ""))
			})
			r.Route("/maintenance", func(r chi.Router) {
				r.Post("/cleanup", maintenance.Cleanup(log, handler))
			})
			r.Route("/key", func(r chi.Router) {
				r.Post("/new", key.Generate(log, handler))
			})
		})
	})

	return router
}

// New serves the API until ctx is done.
func New(ctx context.Context, conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub) error {
	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:           NewRouter(conf, log, handler, hub),
		ErrorLog:          httpLog,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.httpServer.Shutdown(shutdownCtx); err != nil {
			server.log.Error("server shutdown", sl.Err(err))
		}
	}()

	server.log.Info("starting api server", slog.String("address", serverAddress))

	err = server.httpServer.Serve(listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
