package consumers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"clabs/internal/config"
	"clabs/internal/messaging"
	"clabs/internal/models"
	"clabs/internal/search"

	"github.com/nats-io/stan.go"
)

const auditQueue = "audit-indexer"

type ConsumerService struct {
	nats     *messaging.NATSClient
	handlers *Handlers
	subs     []stan.Subscription
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	if !cfg.NATS.Enabled() {
		return nil, errors.New("NATS_URL is required for the audit consumers")
	}
	if !cfg.Elasticsearch.Enabled() {
		return nil, errors.New("ELASTICSEARCH_URL is required for the audit consumers")
	}

	// Connect to Elasticsearch
	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		return nil, err
	}

	// Connect to NATS
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	return &ConsumerService{
		nats:     natsClient,
		handlers: NewHandlers(esClient, cfg.Elasticsearch.Timeout),
	}, nil
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	for _, subject := range models.AuditSubjects {
		sub, err := cs.nats.SubscribeQueue(subject, auditQueue, cs.handlers.HandleAuditRecord)
		if err != nil {
			return fmt.Errorf("failed to start consumer for %s: %w", subject, err)
		}
		cs.subs = append(cs.subs, sub)
	}

	slog.Info("All consumers started successfully", "subjects", len(cs.subs))
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	// Close keeps the durable subscriptions, Unsubscribe would drop them
	for _, sub := range cs.subs {
		if err := sub.Close(); err != nil {
			slog.Error("Error closing subscription", "error", err)
		}
	}

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
			return err
		}
	}

	return ctx.Err()
}
