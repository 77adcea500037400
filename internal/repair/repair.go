// Package repair ties a store, an existence checker and the path validator
// together: it reads a list variable, classifies it, and optionally writes
// the corrected value back.
package repair

import (
	"context"

	"github.com/rs/zerolog"

	"wenv/internal/backup"
	"wenv/internal/errors"
	"wenv/internal/logging"
	"wenv/internal/model"
	"wenv/internal/pathlist"
	"wenv/internal/store"
)

// Options configure a Service.
type Options struct {
	Delimiter string
	Workers   int             // >0 checks entries concurrently
	Backups   *backup.Journal // nil disables backups
}

// Service runs inspections and repairs against one store.
type Service struct {
	store  store.Store
	exists pathlist.ExistsFunc
	opts   Options
	logger zerolog.Logger
}

func NewService(s store.Store, exists pathlist.ExistsFunc, opts Options) *Service {
	return &Service{
		store:  s,
		exists: exists,
		opts:   opts,
		logger: logging.GetLogger("repair"),
	}
}

// Result describes what Apply did.
type Result struct {
	Report    model.RepairReport
	DryRun    bool
	Committed bool
	Backup    *backup.Record `json:",omitempty"`
}

// Inspect classifies the entries of name without proposing changes.
func (s *Service) Inspect(ctx context.Context, name string) (model.RepairReport, error) {
	return s.run(ctx, name, model.ModeReport)
}

// Plan classifies the entries of name and computes the corrected value.
func (s *Service) Plan(ctx context.Context, name string) (model.RepairReport, error) {
	return s.run(ctx, name, model.ModeFilter)
}

func (s *Service) run(ctx context.Context, name string, mode model.Mode) (model.RepairReport, error) {
	done := logging.LogOperationStart(s.logger, mode.String())
	defer done()

	raw, err := s.store.Get(name)
	if err != nil {
		return model.RepairReport{}, err
	}

	entries := pathlist.Parse(raw, s.opts.Delimiter)
	var report model.RepairReport
	if s.opts.Workers > 0 {
		report, err = pathlist.ValidateParallel(ctx, entries, s.exists, mode, s.opts.Delimiter, s.opts.Workers)
		if err != nil {
			return model.RepairReport{}, err
		}
	} else {
		report = pathlist.Validate(entries, s.exists, mode, s.opts.Delimiter)
	}
	report.Variable = name

	s.logger.Info().
		Str("variable", name).
		Int("entries", len(report.Items)).
		Int("invalid", report.InvalidCount).
		Msg("Validated list variable")
	return report, nil
}

// Apply commits a filter-mode report. In dry-run mode, or when nothing
// would change, the store is left alone. A failed write returns the error
// together with a Result whose report is untouched, so callers can show it
// again or retry.
func (s *Service) Apply(report model.RepairReport, dryRun bool) (Result, error) {
	res := Result{Report: report, DryRun: dryRun}
	if !report.HasFiltered {
		return res, errors.New(errors.ErrInternal, "report has no corrected value; plan it in filter mode")
	}
	if dryRun || !report.Changed() {
		s.logger.Info().Str("variable", report.Variable).Bool("dryRun", dryRun).Bool("changed", report.Changed()).Msg("Nothing written")
		return res, nil
	}

	if s.opts.Backups != nil {
		rec, err := s.opts.Backups.Save(report.Variable, report.Original)
		if err != nil {
			return res, err
		}
		res.Backup = &rec
		s.logger.Debug().Str("id", rec.ID).Str("path", s.opts.Backups.Path()).Msg("Saved backup")
	}

	if err := s.store.Set(report.Variable, report.Filtered); err != nil {
		s.logger.Error().Err(err).Str("variable", report.Variable).Msg("Write failed")
		return res, err
	}
	res.Committed = true
	return res, nil
}

// Restore writes a saved value back. An empty id restores the newest backup
// of variable.
func (s *Service) Restore(variable, id string) (backup.Record, error) {
	if s.opts.Backups == nil {
		return backup.Record{}, errors.New(errors.ErrBackupNotFound, "backups are disabled")
	}
	var (
		rec backup.Record
		err error
	)
	if id != "" {
		rec, err = s.opts.Backups.Get(id)
	} else {
		rec, err = s.opts.Backups.Latest(variable)
	}
	if err != nil {
		return backup.Record{}, err
	}
	if err := s.store.Set(rec.Variable, rec.Value); err != nil {
		return backup.Record{}, err
	}
	s.logger.Info().Str("variable", rec.Variable).Str("id", rec.ID).Msg("Restored backup")
	return rec, nil
}
