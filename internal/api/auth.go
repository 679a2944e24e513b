// Package api implements HTTP handlers and helpers for the solar routing service.
package api

import (
    "crypto/subtle"
    "net/http"
    "strings"
)

// authorized checks the request against the configured API token. An empty
// configured token leaves the API open, which is the dev default.
func (s *Server) authorized(r *http.Request) bool {
    if s.Cfg.APIToken == "" {
        return true
    }
    tok := r.Header.Get("X-Api-Token")
    if tok == "" {
        authz := r.Header.Get("Authorization")
        if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
            tok = strings.TrimSpace(authz[len("Bearer "):])
        }
    }
    return subtle.ConstantTimeCompare([]byte(tok), []byte(s.Cfg.APIToken)) == 1
}

// requireAuth writes the standard problem response when the token is absent
// or wrong, reporting whether the caller may proceed.
func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request) bool {
    if s.authorized(r) {
        return true
    }
    writeProblem(w, http.StatusUnauthorized, "Unauthorized", "missing or invalid API token", r.URL.Path)
    return false
}
