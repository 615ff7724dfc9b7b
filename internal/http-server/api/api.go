package api

import (
	"EduPortal/internal/config"
	"EduPortal/internal/http-server/handlers/audit"
	"EduPortal/internal/http-server/handlers/auth"
	"EduPortal/internal/http-server/handlers/errors"
	"EduPortal/internal/http-server/handlers/franchisor"
	"EduPortal/internal/http-server/handlers/health"
	"EduPortal/internal/http-server/handlers/school"
	"EduPortal/internal/http-server/handlers/settings"
	"EduPortal/internal/http-server/handlers/status"
	"EduPortal/internal/http-server/middleware/authenticate"
	"EduPortal/internal/http-server/middleware/timeout"
	"EduPortal/internal/lib/sl"
	"EduPortal/internal/ws"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	auth.Core
	status.Core
	settings.Core
	franchisor.Core
	school.Core
	audit.Core
}

// NewRouter builds the HTTP routes. The audit feed route is only mounted
// when hub is not nil.
func NewRouter(conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Get("/health", health.Live(string(conf.BackendMode)))

	router.Route("/api/v1", func(v1 chi.Router) {
		if hub != nil {
			// Long lived: no timeout, token checked inside.
			v1.Get("/audit/feed", audit.Feed(log, hub, handler))
		}

		v1.Group(func(r chi.Router) {
			r.Use(timeout.Timeout(conf.Listen.TimeoutSeconds))
			r.Use(render.SetContentType(render.ContentTypeJSON))

			r.Post("/auth/login", auth.Login(log, handler))

			r.Group(func(r chi.Router) {
				r.Use(authenticate.New(log, handler))

				r.Route("/auth", func(r chi.Router) {
					r.Get("/post-login-options", auth.PostLoginOptions(log, handler))
					r.Post("/select-access", auth.SelectAccess(log, handler))
					r.Post("/logout", auth.Logout(log, handler))
				})
				r.Route("/entities/{kind}/{id}", func(r chi.Router) {
					r.Post("/status-transition", status.Transition(log, handler))
					r.Get("/status-history", status.History(log, handler))
				})
				r.Route("/system-settings", func(r chi.Router) {
					r.Get("/", settings.Get(log, handler))
					r.Patch("/", settings.Patch(log, handler))
				})
				r.Route("/franchisor/{franchisor_id}/schools", func(r chi.Router) {
					r.Get("/", franchisor.ListSchools(log, handler))
					r.Get("/{school_id}", franchisor.GetSchool(log, handler))
				})
				r.Get("/schools", school.ListSchools(log, handler))
				r.Get("/audit/events", audit.Recent(log, handler))
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
		Handler:  NewRouter(conf, log, handler, hub),
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		_ = server.httpServer.Shutdown(context.Background())
	}()

	server.log.Info("starting api server", slog.String("address", serverAddress))

	err = server.httpServer.Serve(listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
