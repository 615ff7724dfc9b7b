package franchisor

import (
	"EduPortal/internal/lib/api/cont"
	"EduPortal/internal/lib/api/response"
	"EduPortal/internal/lib/sl"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func ListSchools(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.franchisor")
		session := cont.GetSession(r.Context())
		franchisorID := chi.URLParam(r, "franchisor_id")
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("user_id", session.UserID),
			slog.String("franchisor_id", franchisorID),
		)

		schools, err := handler.FranchisorSchools(r.Context(), session, franchisorID)
		if err != nil {
			logger.Debug("list schools", sl.Err(err))
			response.RenderError(w, r, err)
			return
		}

		logger.Debug("schools listed", slog.Int("count", len(schools)))
		render.JSON(w, r, response.Ok(schools))
	}
}

func GetSchool(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.franchisor")
		session := cont.GetSession(r.Context())

		school, err := handler.FranchisorSchool(r.Context(), session, chi.URLParam(r, "franchisor_id"), chi.URLParam(r, "school_id"))
		if err != nil {
			log.With(
				mod,
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("user_id", session.UserID),
			).Debug("get school", sl.Err(err))
			response.RenderError(w, r, err)
			return
		}
		render.JSON(w, r, response.Ok(school))
	}
}
