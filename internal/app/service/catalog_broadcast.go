package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sifan077/LinkShelf/internal/app/catalog"
	"github.com/sifan077/LinkShelf/internal/app/model"
	"go.uber.org/zap"
)

// Publisher is the subset of *nats.Conn used to broadcast invalidations.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Subscriber is the subset of *nats.Conn used to receive invalidations.
type Subscriber interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// CatalogBroadcaster clears the local catalog cache and publishes the
// invalidation so that other replicas clear theirs.
type CatalogBroadcaster struct {
	local   catalog.Invalidator
	pub     Publisher
	subject string
	origin  string
	logger  *zap.Logger
}

// NewCatalogBroadcaster creates a broadcaster. origin identifies this replica
// so it can ignore its own messages.
func NewCatalogBroadcaster(local catalog.Invalidator, pub Publisher, subject, origin string, logger *zap.Logger) *CatalogBroadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	if subject == "" {
		subject = model.DefaultCatalogInvalidationSubject
	}
	return &CatalogBroadcaster{local: local, pub: pub, subject: subject, origin: origin, logger: logger}
}

// InvalidateCatalog clears locally first, then publishes. A publish failure is
// logged; other replicas fall back to TTL expiry.
func (b *CatalogBroadcaster) InvalidateCatalog(ctx context.Context, reason string) {
	b.local.InvalidateCatalog(ctx, reason)
	catalogInvalidations.WithLabelValues("local").Inc()

	event := model.CatalogInvalidation{
		ID:        uuid.NewString(),
		Origin:    b.origin,
		Reason:    reason,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("failed to marshal catalog invalidation", zap.Error(err))
		return
	}
	if err := b.pub.Publish(b.subject, data); err != nil {
		b.logger.Error("failed to publish catalog invalidation",
			zap.String("subject", b.subject),
			zap.String("reason", reason),
			zap.Error(err))
	}
}

// CatalogInvalidationConsumer applies invalidations published by other replicas.
type CatalogInvalidationConsumer struct {
	sub     Subscriber
	subject string
	origin  string
	local   catalog.Invalidator
	logger  *zap.Logger

	subscription *nats.Subscription
}

// NewCatalogInvalidationConsumer creates a consumer for subject.
func NewCatalogInvalidationConsumer(sub Subscriber, subject, origin string, local catalog.Invalidator, logger *zap.Logger) *CatalogInvalidationConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if subject == "" {
		subject = model.DefaultCatalogInvalidationSubject
	}
	return &CatalogInvalidationConsumer{sub: sub, subject: subject, origin: origin, local: local, logger: logger}
}

// Start subscribes to the invalidation subject.
func (c *CatalogInvalidationConsumer) Start() error {
	subscription, err := c.sub.Subscribe(c.subject, c.handle)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	c.subscription = subscription
	return nil
}

// Stop removes the subscription.
func (c *CatalogInvalidationConsumer) Stop() error {
	if c.subscription == nil {
		return nil
	}
	return c.subscription.Unsubscribe()
}

func (c *CatalogInvalidationConsumer) handle(msg *nats.Msg) {
	var event model.CatalogInvalidation
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		c.logger.Error("failed to unmarshal catalog invalidation", zap.Error(err))
		return
	}
	if event.Origin == c.origin {
		return
	}

	c.local.InvalidateCatalog(context.Background(), event.Reason)
	catalogInvalidations.WithLabelValues("remote").Inc()

	c.logger.Debug("catalog invalidated by peer",
		zap.String("id", event.ID),
		zap.String("origin", event.Origin),
		zap.String("reason", event.Reason),
		zap.Time("timestamp", event.Timestamp),
	)
}
