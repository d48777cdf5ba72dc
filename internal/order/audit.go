package order

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	kafkax "github.com/marketcat/storefront-api/internal/kafka"
	"github.com/marketcat/storefront-api/internal/redisx"
)

// Auditor consumes order.requested events and records them.
type Auditor struct {
	Repo        *Repo
	Redis       *redis.Client
	ServiceName string
}

// HandleOrderRequested is wired as a consumer handler.
func (a *Auditor) HandleOrderRequested(ctx context.Context, m kafkago.Message) error {
	var env Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != EventOrderRequested {
		return nil // ignore
	}

	// dedup on event_id; the DB unique constraint backstops this
	dkey := fmt.Sprintf(redisx.KeyDedup, "auditor", env.EventID)
	exists, _ := redisx.Exists(ctx, a.Redis, dkey)
	if exists {
		return nil
	}
	_ = a.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[OrderRequestedPayload](env.Payload)
	if err != nil {
		return err
	}

	if err := a.Repo.InsertRequest(ctx, env, p); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"event_id":  env.EventID,
		"session":   p.SessionID,
		"vendor":    p.VendorName,
		"reference": p.Reference,
	}).Info("order request recorded")
	return nil
}
