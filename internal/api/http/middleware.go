package http

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/investingindigital/url-shortener/internal/config"
	"github.com/investingindigital/url-shortener/internal/service"
	"github.com/investingindigital/url-shortener/pkg/response"
)

const apiKeyHeader = "X-API-Key"

// apiKeyAuth authenticates requests by the shared-secret X-API-Key header.
// The full-access key always passes. When requireFullAccess is false the
// create-only key passes too, unless it is disabled by configuration.
// A missing key yields 401, a wrong or insufficient key 403.
func apiKeyAuth(auth config.Auth, requireFullAccess bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(apiKeyHeader)
			if key == "" {
				w.Header().Set("WWW-Authenticate", apiKeyHeader)
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.APIKeyRequiredResponse)
				return
			}

			if key == auth.APIKey {
				next.ServeHTTP(w, r)
				return
			}

			if !requireFullAccess && auth.CreateOnlyKey != "" && key == auth.CreateOnlyKey {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("WWW-Authenticate", apiKeyHeader)
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.InvalidAPIKeyResponse)
		})
	}
}

// requireHost rejects requests whose Host header, port stripped, does not
// match the given hostname. An empty hostname disables the gate.
func requireHost(host string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if host != "" && service.StripPort(r.Host) != host {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.ForbiddenHostResponse)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
