package service

import (
	redisx "github.com/campustix/campustix/internal/redis"
	postgres "github.com/campustix/campustix/internal/repository/postgres"
	redisrepo "github.com/campustix/campustix/internal/repository/redis"
	"github.com/campustix/campustix/internal/service/admin"
	"github.com/campustix/campustix/internal/service/catalog"
	"github.com/campustix/campustix/internal/service/purchase"
)

type Services struct {
	Purchase *purchase.Service
	Catalog  *catalog.Service
	Admin    *admin.Service
}

type Config struct {
	Purchase purchase.Config
}

func NewServices(
	store *postgres.Store,
	verifier purchase.Verifier,
	pubsub *redisx.EventsPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
	cfg Config,
) *Services {
	var notifier purchase.Notifier
	if pubsub != nil {
		notifier = pubsub
	}

	var lim purchase.Limiter
	if limiter != nil {
		lim = limiter
	}

	return &Services{
		Purchase: purchase.New(store.Events(), verifier, notifier, lim, cfg.Purchase),
		Catalog:  catalog.New(store),
		Admin:    admin.New(store, pubsub),
	}
}
