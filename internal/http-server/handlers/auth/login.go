package auth

import (
	"EduPortal/entity"
	"EduPortal/internal/lib/api/response"
	"EduPortal/internal/lib/sl"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func Login(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.auth")

		remote := r.RemoteAddr
		if xRemote := r.Header.Get("X-Forwarded-For"); xRemote != "" {
			remote = xRemote
		}
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("remote_addr", remote),
		)

		var req entity.LoginRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Debug("bad login request", sl.Err(err))
			response.RenderError(w, r, err)
			return
		}
		logger = logger.With(sl.Secret("email", req.Email))

		result, err := handler.Login(r.Context(), &req, remote)
		if err != nil {
			switch {
			case errors.Is(err, entity.ErrInvalidCredentials),
				errors.Is(err, entity.ErrAccountDisabled),
				errors.Is(err, entity.ErrAccountLocked),
				errors.Is(err, entity.ErrNoPortalAccess):
				logger.Info("login refused", sl.Err(err))
			default:
				logger.Error("login failed", sl.Err(err))
			}
			response.RenderError(w, r, err)
			return
		}

		logger.With(
			slog.String("user_id", result.Identity.ID),
			slog.Int("memberships", len(result.Memberships)),
		).Info("user logged in")
		render.JSON(w, r, response.Ok(result))
	}
}
