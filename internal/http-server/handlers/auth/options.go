package auth

import (
	"EduPortal/internal/lib/api/cont"
	"EduPortal/internal/lib/api/response"
	"EduPortal/internal/lib/sl"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func PostLoginOptions(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.auth")
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		session := cont.GetSession(r.Context())
		options, err := handler.PostLoginOptions(r.Context(), session)
		if err != nil {
			logger.With(slog.String("user_id", session.UserID)).Warn("post-login options", sl.Err(err))
			response.RenderError(w, r, err)
			return
		}
		render.JSON(w, r, response.Ok(options))
	}
}
