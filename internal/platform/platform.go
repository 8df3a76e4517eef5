// Package platform turns configuration into connected infrastructure clients.
package platform

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/storefront-orders/internal/config"
	"github.com/MikeMC777/storefront-orders/internal/events"
	"github.com/MikeMC777/storefront-orders/internal/order"
	"github.com/MikeMC777/storefront-orders/internal/pricing"
)

func OpenPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return pool, nil
}

// OpenRedis returns nil without error when no address is configured.
func OpenRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return rdb, nil
}

func NewPublisher(cfg config.Config, log logrus.FieldLogger) (events.Publisher, error) {
	switch cfg.EventsDriver {
	case "rabbitmq":
		p, err := events.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "kafka":
		p, err := events.NewKafkaPublisher(events.ParseBrokers(cfg.KafkaBrokers), cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return events.LogPublisher{Log: log}, nil
	}
}

func NewPricer(cfg config.Config) order.Pricer {
	if cfg.PricingURL != "" {
		return pricing.NewClient(cfg.PricingURL)
	}
	return pricing.Flat{TaxRate: cfg.TaxRate, Shipping: cfg.FlatShipping, FreeOver: cfg.FreeShippingOver}
}

func NewNumberer(cfg config.Config, db *pgxpool.Pool, rdb *redis.Client) (order.Numberer, error) {
	if cfg.OrderNumberSource == "redis" {
		if rdb == nil {
			return nil, errors.New("redis order numbers need REDIS_ADDR")
		}
		return order.NewRedisNumberer(rdb, ""), nil
	}
	return order.NewSequenceNumberer(db), nil
}
