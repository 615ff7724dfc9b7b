package audit

import (
	"EduPortal/internal/lib/api/cont"
	"EduPortal/internal/lib/api/response"
	"EduPortal/internal/lib/sl"
	"EduPortal/internal/ws"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func Recent(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.audit")
		session := cont.GetSession(r.Context())
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		events, err := handler.RecentAudit(r.Context(), session, limit)
		if err != nil {
			log.With(
				mod,
				slog.String("request_id", middleware.GetReqID(r.Context())),
			).Debug("recent audit", sl.Err(err))
			response.RenderError(w, r, err)
			return
		}
		render.JSON(w, r, response.Ok(events))
	}
}

// Feed streams audit events to an administrator over a websocket.
func Feed(log *slog.Logger, hub *ws.Hub, handler Core) http.HandlerFunc {
	logger := log.With(sl.Module("http.handlers.audit"))
	return func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, handler, logger, w, r)
	}
}
