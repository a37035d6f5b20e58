// Package source discovers and parses check-in files for bulk import.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/unitecon/internal/model"
)

// ParseResult holds the output of parsing a single check-in file.
type ParseResult struct {
	File        CheckinFile
	Records     []Record
	ParseErrors int
	Err         error
}

// ParseFile reads a check-in file. Entries that fail to decode are counted
// in ParseErrors and skipped; Err is only set when the file itself cannot be
// read or is not a check-in document at all.
func ParseFile(f CheckinFile) ParseResult {
	fh, err := os.Open(f.Path)
	if err != nil {
		return ParseResult{File: f, Err: err}
	}
	defer func() { _ = fh.Close() }()

	var res ParseResult
	switch f.Format {
	case FormatYAML:
		res = parseYAML(fh)
	case FormatJSONL:
		res = parseJSONL(fh)
	default:
		res = ParseResult{Err: fmt.Errorf("unsupported format %q", f.Format)}
	}
	res.File = f
	return res
}

func parseYAML(r io.Reader) ParseResult {
	var doc checkinDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return ParseResult{}
		}
		return ParseResult{Err: fmt.Errorf("decoding yaml: %w", err)}
	}

	var res ParseResult
	for i := range doc.Checkins {
		node := &doc.Checkins[i]
		var c RawCheckin
		if err := node.Decode(&c); err != nil || c.Month == 0 {
			res.ParseErrors++
			continue
		}
		res.Records = append(res.Records, Record{Line: node.Line, Checkin: c})
	}
	return res
}

func parseJSONL(r io.Reader) ParseResult {
	var res ParseResult

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if skippable(line) {
			continue
		}

		var c RawCheckin
		if err := json.Unmarshal(line, &c); err != nil || c.Month == 0 {
			res.ParseErrors++
			continue
		}
		res.Records = append(res.Records, Record{Line: lineNo, Checkin: c})
	}
	if err := scanner.Err(); err != nil {
		return ParseResult{Err: err}
	}
	return res
}

// skippable reports blank lines and # comments.
func skippable(line []byte) bool {
	return len(line) == 0 || line[0] == '#'
}

// ParseWeeklyFile reads weekly usage metrics from a YAML (`weeks:` list) or
// JSONL file. Unlike check-ins, a malformed week fails the whole file.
func ParseWeeklyFile(path string) ([]model.WeeklyMetrics, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if format == FormatYAML {
		var doc weeklyDocument
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		return doc.Weeks, nil
	}

	var weeks []model.WeeklyMetrics
	for i, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if skippable(line) {
			continue
		}
		var w model.WeeklyMetrics
		if err := json.Unmarshal(line, &w); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, i+1, err)
		}
		weeks = append(weeks, w)
	}
	return weeks, nil
}
