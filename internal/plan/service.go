package plan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"paymentplan/internal/cache"
	"paymentplan/internal/metrics"
	"paymentplan/internal/schedule"
	"paymentplan/pkg/config"
)

var tracer = otel.Tracer("paymentplan/internal/plan")

// Service wraps the calculator with request limits and a result cache. The
// calculator is deterministic, so identical params always map to the same
// cached result.
type Service struct {
	Cache    cache.Cache
	CacheTTL time.Duration
	Limits   config.LimitsConfig
}

func (s *Service) CheckLimits(p schedule.Params) error {
	if s.Limits.MaxInstallments > 0 && p.InstallmentCount > s.Limits.MaxInstallments {
		return schedule.ValidationError{
			Code:    "INSTALLMENT_LIMIT_EXCEEDED",
			Message: fmt.Sprintf("installment count must be <= %d", s.Limits.MaxInstallments),
		}
	}
	if s.Limits.MaxInterimPayments > 0 && len(p.InterimPayments) > s.Limits.MaxInterimPayments {
		return schedule.ValidationError{
			Code:    "INTERIM_LIMIT_EXCEEDED",
			Message: fmt.Sprintf("at most %d interim payments are allowed", s.Limits.MaxInterimPayments),
		}
	}
	return nil
}

// Calculate returns the schedule for p and whether it was served from cache.
func (s *Service) Calculate(ctx context.Context, source string, p schedule.Params) (schedule.Result, bool, error) {
	ctx, span := tracer.Start(ctx, "plan.Calculate")
	defer span.End()
	span.SetAttributes(
		attribute.String("plan.source", source),
		attribute.Int("plan.installments", p.InstallmentCount),
		attribute.Int("plan.interim_payments", len(p.InterimPayments)),
	)

	if err := s.CheckLimits(p); err != nil {
		metrics.Calculations.WithLabelValues(source, "rejected").Inc()
		span.SetStatus(codes.Error, err.Error())
		return schedule.Result{}, false, err
	}

	key, err := CacheKey(p)
	if err != nil {
		return schedule.Result{}, false, err
	}

	if s.Cache != nil {
		if raw, ok := s.Cache.Get(ctx, key); ok {
			var res schedule.Result
			if err := json.Unmarshal([]byte(raw), &res); err == nil {
				metrics.CacheLookups.WithLabelValues("hit").Inc()
				metrics.Calculations.WithLabelValues(source, "ok").Inc()
				span.SetAttributes(attribute.Bool("plan.cached", true))
				return res, true, nil
			}
			log.Printf("plan cache entry unreadable key=%s", key)
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	start := time.Now()
	res, err := schedule.Calculate(p)
	metrics.CalculationDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Calculations.WithLabelValues(source, "rejected").Inc()
		span.SetStatus(codes.Error, err.Error())
		return schedule.Result{}, false, err
	}
	metrics.Calculations.WithLabelValues(source, "ok").Inc()

	if s.Cache != nil {
		if b, err := json.Marshal(res); err == nil {
			if err := s.Cache.Set(ctx, key, string(b), s.CacheTTL); err != nil {
				log.Printf("plan cache set failed key=%s err=%v", key, err)
			}
		}
	}
	return res, false, nil
}

// CacheKey digests the params. Decimals marshal in their shortest form, so
// "100" and "100.00" share a key.
func CacheKey(p schedule.Params) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
