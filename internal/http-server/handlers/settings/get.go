package settings

import (
	"EduPortal/internal/lib/api/cont"
	"EduPortal/internal/lib/api/response"
	"EduPortal/internal/lib/sl"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func etag(version int64) string {
	return fmt.Sprintf(`"%d"`, version)
}

func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.settings")
		session := cont.GetSession(r.Context())

		rec, err := handler.GetSettings(r.Context(), session)
		if err != nil {
			log.With(
				mod,
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("user_id", session.UserID),
			).Debug("read settings", sl.Err(err))
			response.RenderError(w, r, err)
			return
		}

		w.Header().Set("ETag", etag(rec.Version))
		render.JSON(w, r, response.Ok(rec))
	}
}
