package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultAllowedOrigins admits browser clients served from the local machine
var DefaultAllowedOrigins = []string{
	"http://localhost",
	"https://localhost",
	"http://127.0.0.1",
	"https://127.0.0.1",
}

var (
	corsMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsHeaders = []string{"Accept", "Content-Type", RequestIDHeader}
)

// originAllowed reports whether origin matches one of allowed. An entry
// without a port admits every port; "*" admits everything and "*.example.com"
// admits subdomains. A request without an Origin header is not a browser
// cross-origin request and is always admitted.
func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}

	o, err := url.Parse(origin)
	if err != nil || o.Host == "" {
		return false
	}

	for _, entry := range allowed {
		if entry == "*" || entry == origin {
			return true
		}
		if strings.HasPrefix(entry, "*.") {
			if strings.HasSuffix(o.Hostname(), entry[1:]) {
				return true
			}
			continue
		}

		a, err := url.Parse(entry)
		if err != nil {
			continue
		}
		if a.Port() == "" && a.Scheme == o.Scheme && a.Hostname() == o.Hostname() {
			return true
		}
	}
	return false
}

func cors(allowed []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			ok := origin != "" && originAllowed(origin, allowed)

			if ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)
				w.Header().Add("Vary", "Origin")
			}

			// Handle preflight request
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if ok {
					w.Header().Set("Access-Control-Allow-Methods", strings.Join(corsMethods, ", "))
					w.Header().Set("Access-Control-Allow-Headers", strings.Join(corsHeaders, ", "))
					w.Header().Set("Access-Control-Max-Age", strconv.Itoa(86400))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
