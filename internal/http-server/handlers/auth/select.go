package auth

import (
	"EduPortal/entity"
	"EduPortal/internal/lib/api/cont"
	"EduPortal/internal/lib/api/response"
	"EduPortal/internal/lib/sl"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type SelectAccessResponse struct {
	RedirectTo string                 `json:"redirect_to"`
	Target     *entity.RedirectTarget `json:"target"`
}

func SelectAccess(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.auth")
		session := cont.GetSession(r.Context())
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("user_id", session.UserID),
		)

		var req entity.SelectAccessRequest
		if err := render.Bind(r, &req); err != nil {
			response.RenderError(w, r, err)
			return
		}

		target, err := handler.SelectAccess(r.Context(), session, &req)
		if err != nil {
			logger.With(
				slog.String("portal", req.Portal),
				slog.String("context", req.Context),
			).Info("access selection refused", sl.Err(err))
			response.RenderError(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok(SelectAccessResponse{
			RedirectTo: target.Path,
			Target:     target,
		}))
	}
}
