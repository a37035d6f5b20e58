package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/unitecon/internal/store"
)

func writeCheckins(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	writeCheckins(t, dir, "a.jsonl",
		`{"month":1,"cash_balance":2000000,"current_customers":2,"current_mrr":10000}`,
		`{"month":2,"current_customers":5}`,
		`{"month":1,"current_customers":99}`,
		`garbage`,
	)
	writeCheckins(t, dir, "b.yaml",
		`checkins:`,
		`  - month: 3`,
		`    team_size: -1`,
		`  - month: 4`,
		`    current_customers: 8`,
	)

	st := store.NewMemoryStore(store.Options{})
	var calls atomic.Int32
	res, err := Import(st, []string{dir}, func(current, total int) {
		calls.Add(1)
		assert.LessOrEqual(t, current, total)
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.TotalFiles)
	assert.Equal(t, 2, res.ParsedFiles)
	assert.Equal(t, 1, res.ParseErrors)
	assert.Equal(t, []int{1, 2, 4}, res.Recorded)
	assert.Equal(t, []int{1}, res.Duplicates)
	require.Len(t, res.Invalid, 1)
	assert.Equal(t, 3, res.Invalid[0].Month)
	assert.Equal(t, int32(2), calls.Load())

	// month 2 carried month 1's cash and MRR forward
	snap, ok, err := st.Snapshot(2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, snap.CurrentCustomers)
	assert.Equal(t, "10000", snap.CurrentMRR.String())

	// month 4 has no predecessor so it starts from the defaults
	snap, _, err = st.Snapshot(4)
	require.NoError(t, err)
	assert.Equal(t, 8, snap.CurrentCustomers)
	assert.Equal(t, "2000000", snap.CashBalance.String())

	first, _, err := st.Snapshot(1)
	require.NoError(t, err)
	assert.Equal(t, 2, first.CurrentCustomers, "first check-in for a month wins")
}

func TestImport_NoFiles(t *testing.T) {
	st := store.NewMemoryStore(store.Options{})
	res, err := Import(st, []string{t.TempDir()}, nil)
	require.NoError(t, err)
	assert.Zero(t, res.TotalFiles)
}

func TestImport_MissingPath(t *testing.T) {
	st := store.NewMemoryStore(store.Options{})
	_, err := Import(st, []string{filepath.Join(t.TempDir(), "missing.yaml")}, nil)
	assert.Error(t, err)
}

func TestImport_NonFiniteChurnRejected(t *testing.T) {
	for _, kind := range []string{"memory", "sqlite"} {
		t.Run(kind, func(t *testing.T) {
			dir := t.TempDir()
			writeCheckins(t, dir, "c.yaml",
				`checkins:`,
				`  - month: 1`,
				`    expected_churn_rate: .nan`,
				`  - month: 2`,
				`    expected_churn_rate: 0.05`,
				`  - month: 3`,
				`    expected_churn_rate: .inf`,
			)
			st, err := store.Open(kind, store.Options{})
			require.NoError(t, err)
			defer func() { _ = st.Close() }()

			res, err := Import(st, []string{dir}, nil)
			require.NoError(t, err, "one bad line must not abort the import")
			assert.Equal(t, []int{2}, res.Recorded)
			require.Len(t, res.Invalid, 2)
			assert.Equal(t, 1, res.Invalid[0].Month)
			assert.Equal(t, 3, res.Invalid[1].Month)
		})
	}
}
