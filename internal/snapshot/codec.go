// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	keySeparator     = ":"
	partnerSeparator = ";"
)

// Snapshot maps a product id to its raw snapshot line.
type Snapshot map[int]string

// ProductIDs returns the keys in ascending order.
func (s Snapshot) ProductIDs() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// EncodeLine renders the canonical line for a product. The partner ids are
// copied and sorted ascending; the caller's slice is not modified.
func EncodeLine(productID int, partnerIDs []int) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(productID))
	b.WriteString(keySeparator)

	if len(partnerIDs) == 0 {
		return b.String()
	}

	sorted := make([]int, len(partnerIDs))
	copy(sorted, partnerIDs)
	sort.Ints(sorted)

	for i, id := range sorted {
		if i > 0 {
			b.WriteString(partnerSeparator)
		}
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}

// Decode parses snapshot contents. Malformed lines are skipped; the stored
// value is the whole trimmed line, used later for exact comparison.
func Decode(r io.Reader) (Snapshot, error) {
	snap := make(Snapshot)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		idx := strings.Index(line, keySeparator)
		if idx <= 0 {
			continue
		}

		id, err := strconv.Atoi(strings.TrimSpace(line[:idx]))
		if err != nil {
			continue
		}
		snap[id] = line
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return snap, nil
}

// Load reads the snapshot at path. A missing file yields an empty snapshot.
func Load(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return make(Snapshot), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// Write atomically replaces the snapshot at path with the given lines.
func Write(path string, lines []string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.WriteString(line); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("write temp snapshot: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("write temp snapshot: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	cleanup = false
	return nil
}
