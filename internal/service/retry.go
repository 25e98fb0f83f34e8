package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/bazaar-next/internal/config"
	"github.com/bazaar-next/internal/logger"
)

const (
	defaultRetryAttempts  = 5
	defaultRetryBaseDelay = 50 * time.Millisecond
	defaultRetryMaxDelay  = time.Second
)

// RetryPolicy 并发冲突重试策略
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy 默认重试策略
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: defaultRetryAttempts,
		BaseDelay:   defaultRetryBaseDelay,
		MaxDelay:    defaultRetryMaxDelay,
	}
}

// RetryPolicyFromConfig 从配置构建重试策略，非法值回落默认
func RetryPolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	policy := DefaultRetryPolicy()
	if cfg.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.BaseDelayMS > 0 {
		policy.BaseDelay = time.Duration(cfg.BaseDelayMS) * time.Millisecond
	}
	if cfg.MaxDelayMS > 0 {
		policy.MaxDelay = time.Duration(cfg.MaxDelayMS) * time.Millisecond
	}
	if policy.MaxDelay < policy.BaseDelay {
		policy.MaxDelay = policy.BaseDelay
	}
	return policy
}

// backoff 指数退避 + 全抖动
func (p RetryPolicy) backoff(attempt int) time.Duration {
	ceiling := p.BaseDelay
	for i := 1; i < attempt && ceiling < p.MaxDelay; i++ {
		ceiling *= 2
	}
	if ceiling > p.MaxDelay {
		ceiling = p.MaxDelay
	}
	if ceiling <= 0 {
		return 0
	}
	return rand.N(ceiling + 1)
}

// RetryOnConflict 仅对 ErrConcurrencyConflict 重试，其余错误直接返回
func RetryOnConflict(ctx context.Context, policy RetryPolicy, fn func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	attempts := policy.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, ErrConcurrencyConflict) {
			return err
		}
		if attempt == attempts || ctx.Err() != nil {
			break
		}
		delay := policy.backoff(attempt)
		logger.Debugw("service_retry_on_conflict",
			"attempt", attempt,
			"delay_ms", delay.Milliseconds(),
			"error", err,
		)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}
