package settings

import (
	"EduPortal/entity"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

type fieldKind int

const (
	positiveInt fieldKind = iota
	flag
	text
)

// writable lists the settings an administrator may change. Other keys in a
// patch are dropped.
var writable = map[string]fieldKind{
	"max_login_attempts":     positiveInt,
	"lockout_minutes":        positiveInt,
	"session_expiry_minutes": positiveInt,
	"maintenance_mode":       flag,
	"support_email":          text,
	"platform_name":          text,
}

const maxIntSetting = 1_000_000

// applyPatch merges the allowed keys of patch onto current. It returns the
// merged settings and the names of the keys applied, sorted.
func applyPatch(current entity.SystemSettings, patch map[string]any) (entity.SystemSettings, []string, error) {
	next := current
	var applied []string

	for key, raw := range patch {
		kind, ok := writable[key]
		if !ok {
			continue
		}
		switch kind {
		case positiveInt:
			n, err := toPositiveInt(raw)
			if err != nil {
				return current, nil, fmt.Errorf("%w: %s %v", entity.ErrValidation, key, err)
			}
			switch key {
			case "max_login_attempts":
				next.MaxLoginAttempts = n
			case "lockout_minutes":
				next.LockoutMinutes = n
			case "session_expiry_minutes":
				next.SessionExpiryMinutes = n
			}
		case flag:
			b, ok := raw.(bool)
			if !ok {
				return current, nil, fmt.Errorf("%w: %s must be a boolean", entity.ErrValidation, key)
			}
			next.MaintenanceMode = b
		case text:
			s, ok := raw.(string)
			if !ok {
				return current, nil, fmt.Errorf("%w: %s must be a string", entity.ErrValidation, key)
			}
			s = strings.TrimSpace(s)
			switch key {
			case "support_email":
				next.SupportEmail = s
			case "platform_name":
				next.PlatformName = s
			}
		}
		applied = append(applied, key)
	}
	sort.Strings(applied)
	return next, applied, nil
}

func toPositiveInt(raw any) (int, error) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("must be a number")
		}
		f = parsed
	default:
		return 0, fmt.Errorf("must be a number")
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("must be an integer")
	}
	if f <= 0 || f > maxIntSetting {
		return 0, fmt.Errorf("must be between 1 and %d", maxIntSetting)
	}
	return int(f), nil
}
