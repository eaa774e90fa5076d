package httpx

import (
	"net/http"
	"net/url"
	"strings"
)

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute or scheme-relative URL. Returns fallback when
// invalid.
func safeRedirectPath(candidate, fallback string) string {
	if candidate == "" {
		return fallback
	}
	if strings.HasPrefix(candidate, "//") || strings.HasPrefix(candidate, "/\\") {
		return fallback
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return fallback
	}
	return candidate
}

// withQuery builds path?k=v&... from pairs, skipping empty values.
func withQuery(path string, pairs ...string) string {
	q := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			q.Set(pairs[i], pairs[i+1])
		}
	}
	u := url.URL{Path: path, RawQuery: q.Encode()}
	return u.String()
}

// wantsJSON reports whether the client asked for a JSON answer instead of a redirect.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

// isAPIPath reports whether path belongs to the JSON API.
func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

// respondRedirect sends a 303 to location, or a JSON body naming it for script clients.
func respondRedirect(w http.ResponseWriter, r *http.Request, location string) {
	if wantsJSON(r) {
		WriteJSON(w, http.StatusOK, map[string]string{"redirect_to": location})
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
