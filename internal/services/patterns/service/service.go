// Package service provides the pattern store service implementation
package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"tripline/internal/modkit/repokit"
	perr "tripline/internal/platform/errors"
	"tripline/internal/platform/logger"
	"tripline/internal/services/patterns/domain"
	"tripline/internal/services/patterns/repo"
)

// Config for the patterns service
type Config struct {
	// HardLimit caps List results; defaults to 200 if <=0
	HardLimit int
}

// Service implements domain.WriterPort and domain.ReaderPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	Cfg    Config
}

var (
	vOnce sync.Once
	vld   *validator.Validate
)

func validate() *validator.Validate {
	vOnce.Do(func() {
		vld = validator.New(validator.WithRequiredStructEnabled())
	})
	return vld
}

// New constructs a new patterns service
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], cfg Config) *Service {
	if cfg.HardLimit <= 0 {
		cfg.HardLimit = 200
	}
	return &Service{DB: db, Binder: b, Cfg: cfg}
}

// Reconcile implements domain.WriterPort.
// The insert batch and each update run as separate statements on purpose:
// a crash between them leaves the store in a state the next run re-derives
// correctly from its own today-read, which is the recovery path
func (s *Service) Reconcile(ctx context.Context, now time.Time, xs []domain.DetectedPattern) (domain.Report, error) {
	log := logger.C(ctx).With().Str("mod", "patterns").Logger()

	var rep domain.Report

	// structurally invalid records are logic defects, not environment;
	// log them loudly as rejects and keep going with the rest
	valid := make([]domain.DetectedPattern, 0, len(xs))
	for _, x := range xs {
		if err := validate().Struct(x); err != nil {
			rep.Rejected++
			log.Error().Err(perr.Wrap(err, perr.ErrorCodeValidation, "malformed pattern record")).
				Str("pattern_type", string(x.Type)).
				Msg("pattern record rejected")
			continue
		}
		valid = append(valid, x)
	}
	if len(valid) == 0 {
		return rep, nil
	}

	dayStart := now.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var refs []repo.KeyRef
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		refs, err = s.Binder.Bind(q).RefsByLastDetected(ctx, dayStart, dayEnd)
		return err
	})
	if err != nil {
		// without today's keys there is no safe insert/update decision
		return rep, perr.FromPostgres(err, "fetch today's patterns")
	}

	seen := make(map[string]repo.KeyRef, len(refs))
	for _, r := range refs {
		seen[r.Key] = r
	}

	type update struct {
		ref repo.KeyRef
		x   domain.DetectedPattern
	}
	var (
		inserts []repo.InsertRow
		updates []update
	)
	for _, x := range valid {
		data, merr := json.Marshal(x.Data)
		if merr != nil {
			rep.Rejected++
			log.Error().Err(merr).Str("pattern_key", x.Key.String()).Msg("pattern payload not marshalable")
			continue
		}
		if ref, ok := seen[x.Key.String()]; ok {
			updates = append(updates, update{ref: ref, x: x})
			continue
		}
		inserts = append(inserts, repo.InsertRow{
			Type:       string(x.Type),
			Key:        x.Key.String(),
			Data:       data,
			Confidence: x.Confidence,
			DetectedAt: now,
		})
	}

	if len(inserts) > 0 {
		err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
			return s.Binder.Bind(q).InsertBatch(ctx, inserts)
		})
		switch {
		case err == nil:
			rep.Inserted += len(inserts)
		case perr.IsDuplicateKey(err):
			// another run inserted the same keys after our today-read; the
			// rows exist, the next run will pick them up as updates
			rep.Failed += len(inserts)
			log.Warn().Err(perr.FromPostgres(err, "pattern insert batch")).
				Int("rows", len(inserts)).
				Msg("pattern keys already present, lost insert race")
		default:
			rep.Failed += len(inserts)
			log.Warn().Err(perr.FromPostgres(err, "pattern insert batch")).
				Int("rows", len(inserts)).
				Bool("retryable", perr.Retryable(err)).
				Msg("pattern insert batch failed")
		}
	}

	for _, u := range updates {
		data, _ := json.Marshal(u.x.Data)
		err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
			return s.Binder.Bind(q).Touch(ctx, u.ref.ID, data, u.x.Confidence, now, u.ref.DetectionCount+1)
		})
		if err != nil {
			rep.Failed++
			log.Warn().Err(perr.FromPostgres(err, "pattern update")).
				Str("pattern_key", u.x.Key.String()).
				Bool("retryable", perr.Retryable(err)).
				Msg("pattern update failed")
			continue
		}
		rep.Updated++
	}

	return rep, nil
}

// List implements domain.ReaderPort
func (s *Service) List(ctx context.Context, f domain.Filter) ([]domain.StoredPattern, error) {
	if f.Limit <= 0 || f.Limit > s.Cfg.HardLimit {
		f.Limit = s.Cfg.HardLimit
	}

	var out []domain.StoredPattern
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(q).List(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Summary implements domain.ReaderPort
func (s *Service) Summary(ctx context.Context, day time.Time) ([]domain.TypeCount, error) {
	dayStart := day.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var out []domain.TypeCount
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(q).CountByType(ctx, dayStart, dayEnd)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
