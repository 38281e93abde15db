package credentials

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/models/store"
	"github.com/golang-jwt/jwt/v5"
)

type ServiceAccount struct {
	Email      string
	PrivateKey *rsa.PrivateKey
	TokenURI   string
}

// ParseServiceAccount reads a service-account key file. The private key may be
// PKCS#1 or PKCS#8 PEM.
func ParseServiceAccount(raw []byte) (*ServiceAccount, error) {
	if len(raw) == 0 {
		return nil, &domain.ConfigurationError{Field: "service_account_json"}
	}

	var sa store.ServiceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return nil, fmt.Errorf("failed to parse service account json: %w", err)
	}

	if sa.ClientEmail == "" {
		return nil, &domain.ConfigurationError{Field: "client_email"}
	}
	if sa.PrivateKey == "" {
		return nil, &domain.ConfigurationError{Field: "private_key"}
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account private key: %w", err)
	}

	tokenURI := sa.TokenURI
	if tokenURI == "" {
		tokenURI = GoogleTokenURL
	}

	return &ServiceAccount{
		Email:      sa.ClientEmail,
		PrivateKey: key,
		TokenURI:   tokenURI,
	}, nil
}
