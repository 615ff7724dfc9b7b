package errors

import (
	"EduPortal/internal/lib/api/response"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

func NotFound(_ *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.ErrorCode(response.CodeNotFound, "requested resource not found"))
	}
}
