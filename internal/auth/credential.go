package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is the bearer token of one request plus what could be read from it.
// Opaque tokens carry only Token; the backend remains the authority on them.
type Credential struct {
	Token     string
	Subject   string
	Role      Role
	ExpiresAt time.Time
}

// Expired reports whether the credential carries an expiry before now.
func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ParseCredential inspects a bearer token. JWTs are verified with secret
// (HS256) when one is configured, otherwise only decoded; either way an
// expired JWT is rejected. Non-JWT tokens are accepted as opaque unless a
// secret is configured.
func ParseCredential(token string, secret []byte, now time.Time) (Credential, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Credential{}, ErrUnauthorized
	}
	if strings.Count(token, ".") != 2 {
		if len(secret) > 0 {
			return Credential{}, ErrInvalidToken
		}
		return Credential{Token: token}, nil
	}

	claims := jwt.MapClaims{}
	if len(secret) > 0 {
		parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
		parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("auth: invalid signing method")
			}
			return secret, nil
		})
		if err != nil || !parsed.Valid {
			return Credential{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return Credential{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	cred := Credential{Token: token, Subject: subjectOf(claims)}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		cred.ExpiresAt = exp.Time
	}
	if cred.Expired(now) {
		return Credential{}, ErrExpiredToken
	}
	cred.Role = roleOf(claims)
	return cred, nil
}

func subjectOf(claims jwt.MapClaims) string {
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub
	}
	for _, key := range []string{"user_id", "document"} {
		if value, ok := claims[key]; ok && value != nil {
			switch v := value.(type) {
			case string:
				return v
			case float64:
				return fmt.Sprintf("%.0f", v)
			default:
				return fmt.Sprint(v)
			}
		}
	}
	return ""
}

func roleOf(claims jwt.MapClaims) Role {
	if raw, ok := claims["role"].(string); ok {
		if role, valid := NormalizeRole(raw); valid {
			return role
		}
	}
	for _, key := range []string{"is_staff", "is_superuser"} {
		if flag, ok := claims[key].(bool); ok && flag {
			return RoleAdmin
		}
	}
	return ""
}

// ExtractBearer returns the token of an "Authorization: Bearer" header.
func ExtractBearer(r *http.Request) string {
	if r == nil {
		return ""
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
