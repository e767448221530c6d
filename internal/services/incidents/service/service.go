// Package service provides the incidents service implementation
package service

import (
	"context"
	"time"

	"tripline/internal/modkit/repokit"
	"tripline/internal/services/incidents/repo"
)

// Config for the incidents service
type Config struct {
	// HardLimit caps the actor sample size per ActiveActors call; defaults to 500 if <=0
	HardLimit int
}

// Service implements domain.ReaderPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	Cfg    Config
}

// New constructs a new incidents service
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], cfg Config) *Service {
	if cfg.HardLimit <= 0 {
		cfg.HardLimit = 500
	}
	return &Service{DB: db, Binder: b, Cfg: cfg}
}

// ActiveActors implements domain.ReaderPort
func (s *Service) ActiveActors(ctx context.Context, since, until time.Time, limit int) ([]string, error) {
	if limit <= 0 || limit > s.Cfg.HardLimit {
		limit = s.Cfg.HardLimit
	}

	var out []string
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(q).ActiveActors(ctx, since, until, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LastActorIncidentBefore implements domain.ReaderPort
func (s *Service) LastActorIncidentBefore(ctx context.Context, actorID string, before time.Time) (time.Time, bool, error) {
	var (
		t  time.Time
		ok bool
	)
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		t, ok, err = s.Binder.Bind(q).LastActorIncidentBefore(ctx, actorID, before)
		return err
	})
	if err != nil {
		return time.Time{}, false, err
	}
	return t, ok, nil
}

// AnyActorIncidentBetween implements domain.ReaderPort
func (s *Service) AnyActorIncidentBetween(ctx context.Context, actorID string, after, before time.Time) (bool, error) {
	var exists bool
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		exists, err = s.Binder.Bind(q).AnyActorIncidentBetween(ctx, actorID, after, before)
		return err
	})
	if err != nil {
		return false, err
	}
	return exists, nil
}

// LastActorIncident implements domain.ReaderPort
func (s *Service) LastActorIncident(ctx context.Context, actorID string) (time.Time, bool, error) {
	var (
		t  time.Time
		ok bool
	)
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		t, ok, err = s.Binder.Bind(q).LastActorIncident(ctx, actorID)
		return err
	})
	if err != nil {
		return time.Time{}, false, err
	}
	return t, ok, nil
}

// CountRange implements domain.ReaderPort
func (s *Service) CountRange(ctx context.Context, since, until time.Time) (int, error) {
	var n int
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		n, err = s.Binder.Bind(q).CountRange(ctx, since, until)
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
