package errors

import (
	"EduPortal/internal/lib/api/response"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

func NotAllowed(_ *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusMethodNotAllowed)
		render.JSON(w, r, response.Error("method not allowed"))
	}
}
