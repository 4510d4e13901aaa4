package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/gsttally/internal/config"
	"github.com/smallbiznis/gsttally/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyValidateCompany  = "gsttally:validate:company:%s"
	keyValidateDocument = "gsttally:validate:lock:%s"

	endpointValidate = "validate"
)

// ValidationLimiter guards the validate hook: one recalculation per document
// at a time and a token bucket per company.
type ValidationLimiter struct {
	lockEnabled  bool
	limitEnabled bool

	bucket *TokenBucket
	locker *Locker

	companyRate  float64
	companyBurst int
	lockTTL      time.Duration

	metrics *metrics.Metrics
	log     *zap.Logger
}

type ValidationLimiterParams struct {
	fx.In

	Config  config.Config
	Client  *redis.Client    `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
	Log     *zap.Logger
}

// NewValidationLimiter returns a pass-through limiter when redis is not configured.
func NewValidationLimiter(p ValidationLimiterParams) (*ValidationLimiter, error) {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	l := &ValidationLimiter{
		metrics: p.Metrics,
		log:     log.Named("ratelimit.validate"),
	}
	if p.Client == nil {
		return l, nil
	}

	lockCfg := p.Config.Lock
	if lockCfg.Enabled {
		if lockCfg.DocumentTTL <= 0 {
			return nil, errors.New("document lock ttl must be positive")
		}
		l.lockEnabled = true
		l.locker = NewLocker(p.Client)
		l.lockTTL = lockCfg.DocumentTTL
	}
	if lockCfg.RateLimitEnabled {
		if lockCfg.CompanyRate <= 0 || lockCfg.CompanyBurst <= 0 {
			return nil, errors.New("validate company rate limit must be positive")
		}
		l.limitEnabled = true
		l.bucket = NewTokenBucket(p.Client)
		l.companyRate = lockCfg.CompanyRate
		l.companyBurst = lockCfg.CompanyBurst
	}
	return l, nil
}

func (l *ValidationLimiter) LockEnabled() bool {
	return l != nil && l.lockEnabled
}

func (l *ValidationLimiter) RateLimitEnabled() bool {
	return l != nil && l.limitEnabled
}

// AllowCompany consumes one token from the company's bucket.
func (l *ValidationLimiter) AllowCompany(ctx context.Context, company string) (*RateLimitResult, error) {
	if !l.RateLimitEnabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	company = strings.TrimSpace(company)
	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyValidateCompany, company), l.companyRate, l.companyBurst)
	if err != nil {
		return res, err
	}
	if res.Allowed {
		l.metrics.RecordRateLimitAllowed(ctx, company, endpointValidate)
	} else {
		l.metrics.RecordRateLimitDenied(ctx, company, endpointValidate, "company_bucket")
	}
	return res, nil
}

// LockDocument acquires the per-document lock. It returns ErrDocumentLocked when
// another validation of the same document is in flight.
func (l *ValidationLimiter) LockDocument(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if !l.LockEnabled() || name == "" {
		return "", nil
	}
	token, ok, err := l.locker.TryLock(ctx, fmt.Sprintf(keyValidateDocument, name), l.lockTTL)
	if err != nil {
		return "", err
	}
	if !ok {
		l.metrics.RecordRateLimitDenied(ctx, "", endpointValidate, "document_locked")
		return "", ErrDocumentLocked
	}
	return token, nil
}

// ReleaseDocument releases a lock taken by LockDocument. Failures are logged;
// the key expires on its own.
func (l *ValidationLimiter) ReleaseDocument(ctx context.Context, name, token string) {
	if !l.LockEnabled() || token == "" {
		return
	}
	key := fmt.Sprintf(keyValidateDocument, strings.TrimSpace(name))
	if err := l.locker.Release(ctx, key, token); err != nil {
		l.log.Warn("release document lock failed", zap.String("document", name), zap.Error(err))
	}
}
