package store

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// SeedQueries reads newline-delimited search queries and inserts any that are
// not already known. Returns the number of queries actually added; blank lines
// and already-known queries do not count.
func (s *Store) SeedQueries(ctx context.Context, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	added := 0
	for scanner.Scan() {
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		inserted, err := s.AddSearchQuery(ctx, query)
		if err != nil {
			return added, fmt.Errorf("seed query %q: %w", query, err)
		}
		if inserted {
			added++
		}
	}
	if err := scanner.Err(); err != nil {
		return added, fmt.Errorf("read seed input: %w", err)
	}
	return added, nil
}
