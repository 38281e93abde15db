package domain

import (
	"net/http"
	"time"
)

type CredentialScheme string

const (
	SchemeAPIKey CredentialScheme = "api_key"
	SchemeBearer CredentialScheme = "bearer"
)

const (
	APIKeyParam  = "key"
	TenantHeader = "xero-tenant-id"
)

// Credential is an opaque token plus the expiry reported by its issuer.
type Credential struct {
	Token     string
	Scheme    CredentialScheme
	TenantID  string
	ExpiresAt time.Time
}

// Apply places the credential on an outbound request.
func (c Credential) Apply(req *http.Request) {
	switch c.Scheme {
	case SchemeAPIKey:
		q := req.URL.Query()
		q.Set(APIKeyParam, c.Token)
		req.URL.RawQuery = q.Encode()
	default:
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	if c.TenantID != "" {
		req.Header.Set(TenantHeader, c.TenantID)
	}
}

// Expired reports whether the credential is unusable at now. A zero expiry
// never expires.
func (c Credential) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}
