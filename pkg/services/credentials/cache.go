package credentials

import (
	"context"
	"sync"
	"time"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
)

const DefaultExpirySkew = time.Minute

type cachingProvider struct {
	next Provider
	now  func() time.Time
	skew time.Duration

	mu     sync.Mutex
	cached *domain.Credential
}

// NewCachingProvider reuses the last credential from next until now+skew
// reaches its expiry. Credentials without an expiry are never cached.
func NewCachingProvider(next Provider, now func() time.Time, skew time.Duration) Provider {
	if now == nil {
		now = time.Now
	}
	return &cachingProvider{next: next, now: now, skew: skew}
}

func (p *cachingProvider) Acquire(ctx context.Context) (domain.Credential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil && !p.cached.Expired(p.now().Add(p.skew)) {
		return *p.cached, nil
	}
	p.cached = nil

	cred, err := p.next.Acquire(ctx)
	if err != nil {
		return domain.Credential{}, err
	}

	if !cred.ExpiresAt.IsZero() {
		p.cached = &cred
	}
	return cred, nil
}
