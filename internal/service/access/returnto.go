package access

import (
	"EduPortal/entity"
	"net/url"
	"strings"
)

// SafeReturnTo reports whether raw is a same-origin path inside one of the
// portals. Anything that could leave the origin is refused.
func SafeReturnTo(raw string) (string, bool) {
	if raw == "" || len(raw) > 2048 {
		return "", false
	}
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return "", false
	}
	for _, r := range raw {
		if r < 0x20 || r == 0x7f || r == '\\' {
			return "", false
		}
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil || u.Opaque != "" {
		return "", false
	}

	// Percent-encoded slashes and dots are checked after decoding.
	path := u.Path
	if strings.HasPrefix(path, "//") || strings.Contains(path, "\\") {
		return "", false
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." || seg == "." {
			return "", false
		}
	}

	for _, portal := range entity.PortalPrecedence {
		if strings.HasPrefix(path, portal.PathPrefix()) {
			return raw, true
		}
	}
	return "", false
}
