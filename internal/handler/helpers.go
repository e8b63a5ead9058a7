package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
	"github.com/hotelops-dev/sector-scheduler/backend/internal/rules"
	amqp "github.com/rabbitmq/amqp091-go"
)

func redisOperationContext(seconds int) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(seconds)*time.Second)
}

func (h *Handler) publishMail(msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// sectorConstraints resolves the effective constraint set for a sector,
// serving from redis when a fresh copy exists. Rule writes invalidate the
// cached entries, so a hit is never older than the latest rule change.
func (h *Handler) sectorConstraints(sectorID int64, referenceDate time.Time) (map[string]float64, error) {
	cacheKey := fmt.Sprintf("sector_constraints_%d_%s", sectorID, referenceDate.Format("2006-01-02"))

	ctx, cancel := redisOperationContext(h.config.Redis.OperationExpiration)
	defer cancel()

	if cached, err := h.redisClient.Get(ctx, cacheKey).Result(); err == nil {
		values := map[string]float64{}
		if err := json.Unmarshal([]byte(cached), &values); err == nil {
			return values, nil
		}
	}

	activeRules, err := h.repository.GetRulesForSector(sectorID)
	if err != nil {
		return nil, err
	}

	engine := rules.NewEngine(activeRules)
	set := engine.Constraints(rules.Context{SectorID: sectorID, ReferenceDate: referenceDate})

	if encoded, err := json.Marshal(set.Values); err == nil {
		expiration := time.Duration(h.config.Allocation.ConstraintCacheDuration) * time.Second
		// a failed cache write only costs a recompute on the next call
		_ = h.redisClient.Set(ctx, cacheKey, encoded, expiration).Err()
	}

	return set.Values, nil
}

// invalidateSectorConstraints drops every cached constraint set for a sector.
// Global rules (no sector) touch all sectors, so those drop everything.
func (h *Handler) invalidateSectorConstraints(sectorID *int64) {
	ctx, cancel := redisOperationContext(h.config.Redis.OperationExpiration)
	defer cancel()

	pattern := "sector_constraints_*"
	if sectorID != nil {
		pattern = fmt.Sprintf("sector_constraints_%d_*", *sectorID)
	}

	iter := h.redisClient.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		h.redisClient.Del(ctx, iter.Val())
	}
}
