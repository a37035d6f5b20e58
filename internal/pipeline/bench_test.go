package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/unitecon/internal/store"
)

func seededStore(b *testing.B, months int) *store.Store {
	b.Helper()
	st := store.NewMemoryStore(store.Options{})
	for m := 1; m <= months; m++ {
		if _, err := st.Record(m, checkin(100_000, int64(2_000_000+m*10_000), m*3, int64(m)*15_000, 3)); err != nil {
			b.Fatal(err)
		}
	}
	return st
}

func BenchmarkReport(b *testing.B) {
	st := seededStore(b, 120)
	opts := baseOpts()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Report(st, 60, opts); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTrend(b *testing.B) {
	st := seededStore(b, 120)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		points, err := Trend(st)
		if err != nil {
			b.Fatal(err)
		}
		_ = Summarize(points)
	}
}

func BenchmarkImport(b *testing.B) {
	dir := b.TempDir()
	for f := 0; f < 8; f++ {
		var lines []string
		for m := 1; m <= 50; m++ {
			lines = append(lines, fmt.Sprintf(`{"month":%d,"current_customers":%d}`, f*50+m, m))
		}
		path := filepath.Join(dir, fmt.Sprintf("part-%02d.jsonl", f))
		if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o600); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		st := store.NewMemoryStore(store.Options{})
		if _, err := Import(st, []string{dir}, nil); err != nil {
			b.Fatal(err)
		}
	}
}
