// Package tle reads NORAD Two-Line Element catalogs.
package tle

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/TemirB/satrec-registry/internal/domain"
)

// Parse reads a 3-line catalog (name, line 1, line 2) from r. Triplets whose
// lines do not start with "1 " and "2 " are skipped with a warning. The lines
// themselves are not validated here; derivation does that.
func Parse(r io.Reader, logger *zap.Logger) ([]domain.NewSatellite, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	var entries []domain.NewSatellite
	for i := 0; i+2 < len(lines); {
		if !isTriplet(lines[i:]) {
			logger.Warn("skipping malformed TLE entry",
				zap.Int("line_index", i),
				zap.String("name", lines[i]),
			)
			i++
			continue
		}
		entries = append(entries, entry(lines[i:]))
		i += 3
	}
	return entries, nil
}

// ParseStrict is Parse without skipping: the first misplaced line fails the
// whole catalog.
func ParseStrict(r io.Reader) ([]domain.NewSatellite, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	if len(lines)%3 != 0 {
		return nil, domain.InvalidInput(fmt.Sprintf("catalog has %d lines, want a multiple of 3", len(lines)))
	}

	entries := make([]domain.NewSatellite, 0, len(lines)/3)
	for i := 0; i < len(lines); i += 3 {
		if !isTriplet(lines[i:]) {
			return nil, domain.InvalidInput(fmt.Sprintf("entry at line %d is not a name, line 1, line 2 triplet", i+1))
		}
		entries = append(entries, entry(lines[i:]))
	}
	return entries, nil
}

func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading TLE data: %w", err)
	}
	return lines, nil
}

func isTriplet(l []string) bool {
	return len(l) >= 3 &&
		!strings.HasPrefix(l[0], "1 ") && !strings.HasPrefix(l[0], "2 ") &&
		strings.HasPrefix(l[1], "1 ") &&
		strings.HasPrefix(l[2], "2 ")
}

// entry builds a NewSatellite from a triplet. 3LE catalogs prefix the name
// line with "0 ".
func entry(l []string) domain.NewSatellite {
	name := strings.TrimSpace(strings.TrimPrefix(l[0], "0 "))
	return domain.NewSatellite{Name: name, LineOne: l[1], LineTwo: l[2]}
}
