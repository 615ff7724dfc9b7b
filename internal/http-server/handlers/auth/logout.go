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

func Logout(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.auth")
		session := cont.GetSession(r.Context())

		if err := handler.Logout(r.Context(), session); err != nil {
			log.With(
				mod,
				slog.String("request_id", middleware.GetReqID(r.Context())),
			).Error("logout", sl.Err(err))
			response.RenderError(w, r, err)
			return
		}
		render.JSON(w, r, response.Ok("logged out"))
	}
}
