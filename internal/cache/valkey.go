package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clabs/internal/models"

	"github.com/redis/go-redis/v9"
)

const orderKeyPrefix = "orders:idem:"

type Config struct {
	// Addr пустой - кеш идемпотентности отключен
	Addr           string
	Password       string
	DB             int
	IdempotencyTTL time.Duration
}

func (c Config) Enabled() bool {
	return c.Addr != ""
}

// ValkeyClient remembers gateway orders by Idempotency-Key so a retried
// checkout does not open a second order.
type ValkeyClient struct {
	client *redis.Client
	ttl    time.Duration
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return newValkeyClient(rdb, cfg.IdempotencyTTL), nil
}

func newValkeyClient(rdb *redis.Client, ttl time.Duration) *ValkeyClient {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ValkeyClient{client: rdb, ttl: ttl}
}

// GetOrder returns the cached order for key, or nil when there is none.
func (v *ValkeyClient) GetOrder(ctx context.Context, key string) (*models.CreateOrderResponse, error) {
	raw, err := v.client.Get(ctx, orderKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}

	var order models.CreateOrderResponse
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("invalid order in cache: %w", err)
	}
	return &order, nil
}

// PutOrder stores order under key unless the key is already taken.
func (v *ValkeyClient) PutOrder(ctx context.Context, key string, order *models.CreateOrderResponse) error {
	raw, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	if err := v.client.SetNX(ctx, orderKeyPrefix+key, raw, v.ttl).Err(); err != nil {
		return fmt.Errorf("cache write error: %w", err)
	}
	return nil
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
