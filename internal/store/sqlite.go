package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/unitecon/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// SQLite is a Backend over a private in-memory SQLite database. The data
// lives only as long as the process, same as Memory.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates a fresh private database and its schema.
func OpenSQLite() (*SQLite, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening snapshot db: %w", err)
	}
	// Every pooled connection to :memory: would get its own empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database, discarding every snapshot.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Insert adds snap, or returns *model.DuplicateMonthError when the month
// already has a row.
func (s *SQLite) Insert(snap model.MonthlySnapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRow("SELECT COUNT(*) FROM snapshots WHERE month = ?", snap.Month).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking month %d: %w", snap.Month, err)
	}
	if exists > 0 {
		return &model.DuplicateMonthError{Month: snap.Month}
	}

	in := snap.Inputs
	_, err = tx.Exec(`INSERT INTO snapshots (`+snapshotColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.Month, snap.ID.String(),
		in.MarketingBudget.String(), in.CashBalance.String(), in.SubscriptionPrice.String(),
		in.CurrentCustomers, in.CurrentMRR.String(), in.TargetCAC.String(),
		in.TeamSize, in.ExpectedChurnRate,
		snap.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting month %d: %w", snap.Month, err)
	}
	return tx.Commit()
}

// Lookup returns the snapshot for month, if any.
func (s *SQLite) Lookup(month int) (model.MonthlySnapshot, bool, error) {
	row := s.db.QueryRow("SELECT "+snapshotColumns+" FROM snapshots WHERE month = ?", month)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MonthlySnapshot{}, false, nil
	}
	if err != nil {
		return model.MonthlySnapshot{}, false, err
	}
	return snap, true, nil
}

// List returns every snapshot ordered by month.
func (s *SQLite) List() ([]model.MonthlySnapshot, error) {
	rows, err := s.db.Query("SELECT " + snapshotColumns + " FROM snapshots ORDER BY month")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.MonthlySnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(r rowScanner) (model.MonthlySnapshot, error) {
	var (
		snap                              model.MonthlySnapshot
		id, budget, cash, price, mrr, cac string
		recordedAt                        string
	)
	err := r.Scan(
		&snap.Month, &id, &budget, &cash, &price,
		&snap.CurrentCustomers, &mrr, &cac, &snap.TeamSize, &snap.ExpectedChurnRate,
		&recordedAt,
	)
	if err != nil {
		return model.MonthlySnapshot{}, err
	}

	if snap.ID, err = uuid.Parse(id); err != nil {
		return model.MonthlySnapshot{}, fmt.Errorf("month %d: bad id: %w", snap.Month, err)
	}
	money := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&snap.MarketingBudget, budget},
		{&snap.CashBalance, cash},
		{&snap.SubscriptionPrice, price},
		{&snap.CurrentMRR, mrr},
		{&snap.TargetCAC, cac},
	}
	for _, m := range money {
		if *m.dst, err = decimal.NewFromString(m.src); err != nil {
			return model.MonthlySnapshot{}, fmt.Errorf("month %d: bad amount %q: %w", snap.Month, m.src, err)
		}
	}
	if snap.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
		return model.MonthlySnapshot{}, fmt.Errorf("month %d: bad recorded_at: %w", snap.Month, err)
	}
	return snap, nil
}
