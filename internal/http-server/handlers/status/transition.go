package status

import (
	"EduPortal/entity"
	"EduPortal/internal/lib/api/cont"
	"EduPortal/internal/lib/api/response"
	"EduPortal/internal/lib/sl"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func Transition(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.status")
		session := cont.GetSession(r.Context())
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("user_id", session.UserID),
		)

		kind, err := entity.ParseEntityKind(chi.URLParam(r, "kind"))
		if err != nil {
			response.RenderError(w, r, entity.ErrNotFound)
			return
		}
		id := chi.URLParam(r, "id")
		logger = logger.With(
			slog.String("entity_kind", string(kind)),
			slog.String("entity_id", id),
		)

		var req entity.TransitionRequest
		if err = render.Bind(r, &req); err != nil {
			response.RenderError(w, r, err)
			return
		}

		entry, err := handler.TransitionStatus(r.Context(), session, kind, id, &req)
		if err != nil {
			if errors.Is(err, entity.ErrConflict) || errors.Is(err, entity.ErrInvalidTransition) {
				logger.With(slog.String("action", req.Action)).Info("transition refused", sl.Err(err))
			} else {
				logger.With(slog.String("action", req.Action)).Warn("transition failed", sl.Err(err))
			}
			response.RenderError(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok(entry))
	}
}
