package auth

import (
	"errors"
	"net/http"
	"time"
)

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Middleware checks the bearer credential and enforces roles.
type Middleware struct {
	Secret  []byte
	Policy  Policy
	OnError ErrorWriter
	Now     func() time.Time
}

// NewMiddleware constructs an auth middleware.
func NewMiddleware(secret []byte, policy Policy, onError ErrorWriter) *Middleware {
	return &Middleware{Secret: secret, Policy: policy, OnError: onError, Now: time.Now}
}

// Wrap applies authentication and role checks to the handler. Roles are only
// enforced when the token states one; opaque tokens are left to the backend.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Policy.IsExempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		required, ok := m.Policy.RequiredRole(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		now := time.Now
		if m.Now != nil {
			now = m.Now
		}
		cred, err := ParseCredential(ExtractBearer(r), m.Secret, now())
		if err != nil {
			m.fail(w, r, err)
			return
		}
		if cred.Role != "" && !RoleAtLeast(cred.Role, required) {
			m.fail(w, r, ErrForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCredential(r.Context(), cred)))
	})
}

func (m *Middleware) fail(w http.ResponseWriter, r *http.Request, err error) {
	if m.OnError != nil {
		m.OnError(w, r, err)
		return
	}
	if errors.Is(err, ErrForbidden) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}
