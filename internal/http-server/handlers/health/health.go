package health

import (
	"EduPortal/internal/lib/api/response"
	"net/http"

	"github.com/go-chi/render"
)

type Status struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

func Live(backend string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.Ok(Status{Status: "ok", Backend: backend}))
	}
}
