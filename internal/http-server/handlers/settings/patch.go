package settings

import (
	"EduPortal/entity"
	"EduPortal/internal/lib/api/cont"
	"EduPortal/internal/lib/api/response"
	"EduPortal/internal/lib/sl"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

const maxBody = 64 << 10

// expectedVersion reads the version the client based its edit on, from
// If-Match first and then from the expected_version body field.
func expectedVersion(r *http.Request, body map[string]any) (int64, error) {
	if match := strings.TrimSpace(r.Header.Get("If-Match")); match != "" {
		match = strings.TrimPrefix(match, "W/")
		v, err := strconv.ParseInt(strings.Trim(match, `"`), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: malformed If-Match", entity.ErrValidation)
		}
		return v, nil
	}
	raw, ok := body["expected_version"]
	if !ok {
		return 0, fmt.Errorf("%w: expected_version or If-Match is required", entity.ErrValidation)
	}
	f, ok := raw.(float64)
	if !ok || f != float64(int64(f)) {
		return 0, fmt.Errorf("%w: expected_version must be an integer", entity.ErrValidation)
	}
	return int64(f), nil
}

func Patch(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.settings")
		session := cont.GetSession(r.Context())
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("user_id", session.UserID),
		)

		var body map[string]any
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&body); err != nil {
			response.RenderError(w, r, fmt.Errorf("%w: invalid request body", entity.ErrValidation))
			return
		}

		version, err := expectedVersion(r, body)
		if err != nil {
			response.RenderError(w, r, err)
			return
		}
		patch := body
		if nested, ok := body["settings"].(map[string]any); ok {
			patch = nested
		}

		rec, err := handler.UpdateSettings(r.Context(), session, patch, version)
		if err != nil {
			if errors.Is(err, entity.ErrConflict) {
				logger.With(slog.Int64("expected_version", version)).Info("settings write conflict")
			} else {
				logger.Warn("settings write failed", sl.Err(err))
			}
			response.RenderError(w, r, err)
			return
		}

		w.Header().Set("ETag", etag(rec.Version))
		render.JSON(w, r, response.Ok(rec))
	}
}
