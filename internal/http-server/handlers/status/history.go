package status

import (
	"EduPortal/entity"
	"EduPortal/internal/lib/api/cont"
	"EduPortal/internal/lib/api/response"
	"EduPortal/internal/lib/sl"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func History(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.status")
		session := cont.GetSession(r.Context())

		kind, err := entity.ParseEntityKind(chi.URLParam(r, "kind"))
		if err != nil {
			response.RenderError(w, r, entity.ErrNotFound)
			return
		}
		id := chi.URLParam(r, "id")

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

		history, err := handler.StatusHistory(r.Context(), session, kind, id, page, pageSize)
		if err != nil {
			log.With(
				mod,
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("entity_kind", string(kind)),
				slog.String("entity_id", id),
			).Debug("status history", sl.Err(err))
			response.RenderError(w, r, err)
			return
		}
		render.JSON(w, r, response.Ok(history))
	}
}
