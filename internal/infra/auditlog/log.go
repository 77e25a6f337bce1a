// Package auditlog provides the append-only, day-partitioned transition log.
// Entries are written as JSON Lines under <dataDir>/audit/YYYY-MM-DD.jsonl
// with O_APPEND writes. This package never mutates or deletes partitions;
// retention is an external concern.
package auditlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/loopgate/loopgate/internal/domain"
)

// Log implements domain.AuditSink and domain.AuditReader over partition files.
type Log struct {
	clock domain.Clock
	dir   string
}

// New creates a Log writing under the given partition directory.
func New(dir string, clock domain.Clock) *Log {
	return &Log{dir: dir, clock: clock}
}

// Record appends one entry to its day partition. The timestamp is filled
// from the clock when the caller left it zero.
func (l *Log) Record(entry domain.AuditEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.clock.Now()
	}

	if err := os.MkdirAll(l.dir, 0o750); err != nil {
		return fmt.Errorf("create audit directory: %w", err)
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	path := l.partitionPath(entry.Partition())
	// O_APPEND keeps concurrent writers from interleaving within a line.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Audit files readable by owner and group
	if err != nil {
		return fmt.Errorf("open audit partition: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// List returns all entries in the given day partition (YYYY-MM-DD), in
// append order.
func (l *Log) List(day string) ([]domain.AuditEntry, error) {
	return l.readPartition(l.partitionPath(day))
}

// Tail returns the most recent n entries across partitions.
func (l *Log) Tail(n int) ([]domain.AuditEntry, error) {
	days, err := l.partitions()
	if err != nil {
		return nil, err
	}

	var entries []domain.AuditEntry
	// Walk partitions newest-first until n entries are collected.
	for i := len(days) - 1; i >= 0 && len(entries) < n; i-- {
		part, err := l.readPartition(l.partitionPath(days[i]))
		if err != nil {
			return nil, err
		}
		entries = append(part, entries...)
	}

	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

// partitions returns the available day partitions in ascending order.
func (l *Log) partitions() ([]string, error) {
	dirEntries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read audit directory: %w", err)
	}

	var days []string
	for _, e := range dirEntries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		days = append(days, strings.TrimSuffix(name, ".jsonl"))
	}
	slices.Sort(days)
	return days, nil
}

func (l *Log) partitionPath(day string) string {
	return filepath.Join(l.dir, day+".jsonl")
}

func (l *Log) readPartition(path string) ([]domain.AuditEntry, error) {
	f, err := os.Open(path) //nolint:gosec // Path is derived from the configured audit directory
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open audit partition: %w", err)
	}
	defer func() { _ = f.Close() }()

	var entries []domain.AuditEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry domain.AuditEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrStateCorruption, path, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan audit partition: %w", err)
	}
	return entries, nil
}

// Interface conformance.
var (
	_ domain.AuditSink   = (*Log)(nil)
	_ domain.AuditReader = (*Log)(nil)
)
