package school

import (
	"EduPortal/internal/lib/api/cont"
	"EduPortal/internal/lib/api/response"
	"EduPortal/internal/lib/sl"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// ListSchools is the administrators' view of every school. The status query
// parameter filters by lifecycle status; "all" or empty returns everything.
func ListSchools(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.school")
		session := cont.GetSession(r.Context())

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("user_id", session.UserID),
		)

		status := r.URL.Query().Get("status")
		if status == "" {
			status = "all"
		}

		schools, err := handler.AdminSchools(r.Context(), session, status)
		if err != nil {
			logger.Debug("list schools", slog.String("status", status), sl.Err(err))
			response.RenderError(w, r, err)
			return
		}

		logger.Debug("schools listed", slog.Int("count", len(schools)))
		render.JSON(w, r, response.Ok(schools))
	}
}
