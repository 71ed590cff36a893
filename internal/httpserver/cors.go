package httpserver

import (
	"net/http"
	"strings"

	"github.com/fdg312/health-navigator/internal/config"
)

type originSet map[string]struct{}

func newOriginSet(origins []string) originSet {
	set := make(originSet, len(origins))
	for _, o := range origins {
		set[strings.TrimSpace(o)] = struct{}{}
	}
	return set
}

func (s originSet) contains(origin string) bool {
	_, ok := s[origin]
	return ok
}

// CORSMiddleware выставляет CORS-заголовки для разрешённых origin'ов
// и отвечает на preflight-запросы.
func CORSMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	allowed := newOriginSet(cfg.CORSAllowedOrigins)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && allowed.contains(origin) {
			headers := w.Header()
			headers.Set("Access-Control-Allow-Origin", origin)
			headers.Set("Vary", "Origin")
			if cfg.CORSAllowCredentials {
				headers.Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if r.Method == http.MethodOptions && origin != "" {
			if allowed.contains(origin) {
				headers := w.Header()
				headers.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
				headers.Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
				headers.Set("Access-Control-Max-Age", "600")
			}
			// Неразрешённый origin: 204 без CORS-заголовков, браузер отклонит сам.
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
