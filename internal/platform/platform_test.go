package platform

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/storefront-orders/internal/config"
	"github.com/MikeMC777/storefront-orders/internal/events"
	"github.com/MikeMC777/storefront-orders/internal/pricing"
)

func TestNewPricerPicksImplementation(t *testing.T) {
	flat := NewPricer(config.Config{TaxRate: decimal.RequireFromString("0.1")})
	assert.IsType(t, pricing.Flat{}, flat)

	remote := NewPricer(config.Config{PricingURL: "http://pricing:9000"})
	assert.IsType(t, &pricing.Client{}, remote)
}

func TestNewPublisherDefaultsToLog(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	p, err := NewPublisher(config.Config{EventsDriver: "none"}, log)
	require.NoError(t, err)
	assert.IsType(t, events.LogPublisher{}, p)
}

func TestOpenRedisDisabled(t *testing.T) {
	rdb, err := OpenRedis(context.Background(), config.Config{})
	require.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestRedisNumbersNeedClient(t *testing.T) {
	_, err := NewNumberer(config.Config{OrderNumberSource: "redis"}, nil, nil)
	require.Error(t, err)
}
