package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/unitecon/internal/model"
	"github.com/theirongolddev/unitecon/internal/source"
	"github.com/theirongolddev/unitecon/internal/store"
)

// ImportResult holds the output of a bulk check-in import.
type ImportResult struct {
	TotalFiles  int
	ParsedFiles int
	FileErrors  int
	ParseErrors int
	Recorded    []int
	Duplicates  []int
	Invalid     []RejectedCheckin
}

// RejectedCheckin is a parsed check-in that failed validation.
type RejectedCheckin struct {
	Path  string
	Line  int
	Month int
	Err   error
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Import discovers and parses check-in files, then records them into st.
// Parsing runs on a bounded worker pool; recording is sequential and follows
// the order of paths and of entries within each file, so the first check-in
// for a month wins and later ones are reported as duplicates. Fields missing
// from an entry are filled by carry-forward, same as the input form.
func Import(st *store.Store, paths []string, progressFn ProgressFunc) (*ImportResult, error) {
	files, err := source.Discover(paths)
	if err != nil {
		return nil, fmt.Errorf("discovering check-in files: %w", err)
	}

	result := &ImportResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	for _, pr := range parseAll(files, progressFn) {
		if pr.Err != nil {
			result.FileErrors++
			slog.Warn("skipping check-in file", "path", pr.File.Path, "err", pr.Err)
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors

		for _, rec := range pr.Records {
			if err := recordOne(st, rec); err != nil {
				switch {
				case errors.Is(err, model.ErrDuplicateMonth):
					result.Duplicates = append(result.Duplicates, rec.Checkin.Month)
				case errors.Is(err, model.ErrInvalidInput):
					result.Invalid = append(result.Invalid, RejectedCheckin{
						Path: pr.File.Path, Line: rec.Line, Month: rec.Checkin.Month, Err: err,
					})
				default:
					return result, err
				}
				continue
			}
			result.Recorded = append(result.Recorded, rec.Checkin.Month)
		}
	}

	slog.Debug("import finished",
		"files", result.ParsedFiles,
		"recorded", len(result.Recorded),
		"duplicates", len(result.Duplicates),
		"invalid", len(result.Invalid))
	return result, nil
}

func recordOne(st *store.Store, rec source.Record) error {
	month := rec.Checkin.Month
	if month < 1 {
		return &model.InvalidInputError{Field: "month", Reason: "must be 1 or greater"}
	}
	base, err := st.CarryForward(month)
	if err != nil {
		return err
	}
	if base.Source == model.CarryRecorded {
		return &model.DuplicateMonthError{Month: month}
	}
	in := rec.Checkin.Merge(base.Inputs)
	if err := in.Validate(); err != nil {
		return err
	}
	_, err = st.Record(month, in)
	return err
}

func parseAll(files []source.CheckinFile, progressFn ProgressFunc) []source.ParseResult {
	numWorkers := min(max(runtime.GOMAXPROCS(0), 1), len(files))

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for range numWorkers {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(files))
				}
			}
		}()
	}

	wg.Wait()
	return results
}
