// Package store holds the per-session history of monthly check-ins.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/unitecon/internal/model"
)

// Options configures a Store.
type Options struct {
	// Defaults is the table CarryForward falls back to. Zero value means
	// model.DefaultInputs().
	Defaults *model.Inputs
	// Now stamps RecordedAt. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Store is the append-only month-keyed snapshot history. Inputs are
// expected to be validated by the caller.
type Store struct {
	backend  Backend
	defaults model.Inputs
	now      func() time.Time
	log      *slog.Logger
}

// New wraps backend in a Store.
func New(backend Backend, opts Options) *Store {
	s := &Store{
		backend:  backend,
		defaults: model.DefaultInputs(),
		now:      time.Now,
		log:      slog.Default(),
	}
	if opts.Defaults != nil {
		s.defaults = *opts.Defaults
	}
	if opts.Now != nil {
		s.now = opts.Now
	}
	if opts.Logger != nil {
		s.log = opts.Logger
	}
	return s
}

// NewMemoryStore is shorthand for New(NewMemory(), opts).
func NewMemoryStore(opts Options) *Store {
	return New(NewMemory(), opts)
}

// Open builds a Store on the named backend: "memory" (or empty) or "sqlite".
func Open(kind string, opts Options) (*Store, error) {
	switch kind {
	case "", "memory":
		return New(NewMemory(), opts), nil
	case "sqlite":
		b, err := OpenSQLite()
		if err != nil {
			return nil, err
		}
		return New(b, opts), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", kind)
	}
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Record stores in as the snapshot for month. A month can be recorded once;
// a second attempt returns *model.DuplicateMonthError and leaves the first
// snapshot untouched.
func (s *Store) Record(month int, in model.Inputs) (model.MonthlySnapshot, error) {
	if month < 1 {
		return model.MonthlySnapshot{}, &model.InvalidInputError{Field: "month", Reason: "must be 1 or greater"}
	}
	snap := model.MonthlySnapshot{
		ID:         uuid.New(),
		Month:      month,
		Inputs:     in,
		RecordedAt: s.now().UTC(),
	}
	if err := s.backend.Insert(snap); err != nil {
		if errors.Is(err, model.ErrDuplicateMonth) {
			s.log.Warn("month already recorded", "month", month)
			return model.MonthlySnapshot{}, err
		}
		return model.MonthlySnapshot{}, fmt.Errorf("recording month %d: %w", month, err)
	}
	s.log.Debug("snapshot recorded", "month", month, "id", snap.ID)
	return snap, nil
}

// Snapshot returns the snapshot for exactly month.
func (s *Store) Snapshot(month int) (model.MonthlySnapshot, bool, error) {
	snap, ok, err := s.backend.Lookup(month)
	if err != nil {
		return model.MonthlySnapshot{}, false, fmt.Errorf("looking up month %d: %w", month, err)
	}
	return snap, ok, nil
}

// Previous returns the snapshot for month-1. It never looks further back,
// so a gap means no predecessor.
func (s *Store) Previous(month int) (model.MonthlySnapshot, bool, error) {
	if month <= 1 {
		return model.MonthlySnapshot{}, false, nil
	}
	return s.Snapshot(month - 1)
}

// All returns every snapshot ordered by month. Each call returns a new slice.
func (s *Store) All() ([]model.MonthlySnapshot, error) {
	snaps, err := s.backend.List()
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	return snaps, nil
}

// Len returns the number of recorded months.
func (s *Store) Len() (int, error) {
	snaps, err := s.All()
	return len(snaps), err
}

// Defaults returns the system default table in effect for this store.
func (s *Store) Defaults() model.Inputs {
	return s.defaults
}

// CarryForward picks the values to pre-fill the inputs for month: the
// month's own snapshot, else month-1's, else the defaults. It never writes.
func (s *Store) CarryForward(month int) (model.Prefill, error) {
	snap, ok, err := s.Snapshot(month)
	if err != nil {
		return model.Prefill{}, err
	}
	if ok {
		return model.Prefill{Month: month, Inputs: snap.Inputs, Source: model.CarryRecorded}, nil
	}

	prev, ok, err := s.Previous(month)
	if err != nil {
		return model.Prefill{}, err
	}
	if ok {
		return model.Prefill{Month: month, Inputs: prev.Inputs, Source: model.CarryPrevious}, nil
	}
	return model.Prefill{Month: month, Inputs: s.defaults, Source: model.CarryDefaults}, nil
}
