package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-ledger-api/internal/handler"
	"github.com/noah-isme/attendance-ledger-api/internal/repository"
	"github.com/noah-isme/attendance-ledger-api/internal/service"
	"github.com/noah-isme/attendance-ledger-api/pkg/config"
	"github.com/noah-isme/attendance-ledger-api/pkg/database"
)

// Collection names of the document store backend.
const (
	childrenCollection   = "children"
	attendanceCollection = "attendance"
	paymentsCollection   = "payments"
)

type stores struct {
	children   service.ChildRepository
	attendance service.AttendanceRepository
	payments   service.PaymentRepository
	checks     map[string]handler.ReadinessCheck
	closers    []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		logr.Info("using postgres store", zap.String("database", cfg.Database.Name))
		return &stores{
			children:   repository.NewChildRepository(db),
			attendance: repository.NewAttendanceRepository(db),
			payments:   repository.NewPaymentRepository(db),
			checks:     map[string]handler.ReadinessCheck{"postgres": db.PingContext},
			closers:    []func(){func() { _ = db.Close() }},
		}, nil
	case config.StoreDriverMongo:
		client, db, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		logr.Info("using mongo store", zap.String("database", cfg.Mongo.Database))
		return &stores{
			children:   repository.NewMongoChildRepository(db.Collection(childrenCollection)),
			attendance: repository.NewMongoAttendanceRepository(db.Collection(attendanceCollection)),
			payments:   repository.NewMongoPaymentRepository(db.Collection(paymentsCollection)),
			checks: map[string]handler.ReadinessCheck{"mongo": func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			}},
			closers: []func(){func() { _ = client.Disconnect(context.Background()) }},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// openSequencer returns the write sequencer. Redis is optional: when disabled
// or unreachable the sequencer stamps versions from the local clock.
func openSequencer(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*repository.SequenceRepository, func()) {
	if !cfg.Sequencer.Enabled {
		return repository.NewSequenceRepository(nil, cfg.Sequencer.KeyTTL, logr), func() {}
	}
	client, err := database.NewRedis(ctx, cfg.Redis, cfg.Store.Timeout)
	if err != nil {
		logr.Warn("redis unavailable, write sequencer uses local clock", zap.Error(err))
		return repository.NewSequenceRepository(nil, cfg.Sequencer.KeyTTL, logr), func() {}
	}
	return repository.NewSequenceRepository(client, cfg.Sequencer.KeyTTL, logr), func() { _ = client.Close() }
}
