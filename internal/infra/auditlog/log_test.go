package auditlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopgate/loopgate/internal/domain"
	"github.com/loopgate/loopgate/internal/testutil"
)

func TestLog_Record_PartitionsByDay(t *testing.T) {
	// Setup
	dir := t.TempDir()
	clock := &testutil.MockClock{NowTime: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)}
	log := New(dir, clock)

	// Execute - two entries on day one, one after midnight
	require.NoError(t, log.Record(domain.AuditEntry{
		EntityType: domain.EntityTask, EntityID: "t1", ToStatus: "active", Actor: "worker-a",
	}))
	clock.Advance(time.Hour)
	require.NoError(t, log.Record(domain.AuditEntry{
		EntityType: domain.EntityTask, EntityID: "t1", FromStatus: "active", ToStatus: "complete", Actor: "worker-a",
	}))
	clock.Advance(24 * time.Hour)
	require.NoError(t, log.Record(domain.AuditEntry{
		EntityType: domain.EntityGroup, EntityID: "g1", ToStatus: "pending", Actor: "worker-b",
	}))

	// Assert - each day readable on its own, in append order
	day1, err := log.List("2026-08-01")
	require.NoError(t, err)
	require.Len(t, day1, 2)
	assert.Equal(t, "active", day1[0].ToStatus)
	assert.Equal(t, "complete", day1[1].ToStatus)
	assert.Equal(t, clock.NowTime.Add(-24*time.Hour), day1[1].Timestamp, "zero timestamp filled from clock")

	day2, err := log.List("2026-08-02")
	require.NoError(t, err)
	require.Len(t, day2, 1)
	assert.Equal(t, domain.EntityGroup, day2[0].EntityType)
}

func TestLog_Record_KeepsCallerTimestamp(t *testing.T) {
	dir := t.TempDir()
	clock := &testutil.MockClock{NowTime: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)}
	log := New(dir, clock)
	stamped := time.Date(2026, 7, 15, 8, 30, 0, 0, time.UTC)

	require.NoError(t, log.Record(domain.AuditEntry{
		Timestamp: stamped, EntityType: domain.EntityTask, EntityID: "t1", ToStatus: "active",
	}))

	entries, err := log.List("2026-07-15")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Timestamp.Equal(stamped))
}

func TestLog_Tail_SpansPartitions(t *testing.T) {
	// Setup - three days, two entries each
	dir := t.TempDir()
	clock := &testutil.MockClock{NowTime: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)}
	log := New(dir, clock)
	for day := range 3 {
		for i := range 2 {
			require.NoError(t, log.Record(domain.AuditEntry{
				EntityType: domain.EntityTask,
				EntityID:   "t1",
				Detail:     time.Date(2026, 8, 1+day, 10+i, 0, 0, 0, time.UTC).Format(time.RFC3339),
			}))
			clock.Advance(time.Hour)
		}
		clock.Advance(22 * time.Hour)
	}

	// Execute
	entries, err := log.Tail(3)

	// Assert - the most recent three, oldest first
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "2026-08-02T11:00:00Z", entries[0].Detail)
	assert.Equal(t, "2026-08-03T10:00:00Z", entries[1].Detail)
	assert.Equal(t, "2026-08-03T11:00:00Z", entries[2].Detail)
}

func TestLog_Tail_FewerEntriesThanRequested(t *testing.T) {
	dir := t.TempDir()
	clock := &testutil.MockClock{NowTime: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)}
	log := New(dir, clock)
	require.NoError(t, log.Record(domain.AuditEntry{EntityType: domain.EntityTask, EntityID: "t1"}))

	entries, err := log.Tail(50)

	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLog_List_MissingPartition(t *testing.T) {
	log := New(t.TempDir(), &testutil.MockClock{})

	entries, err := log.List("2026-01-01")

	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLog_Tail_NoPartitions(t *testing.T) {
	log := New(filepath.Join(t.TempDir(), "never-created"), &testutil.MockClock{})

	entries, err := log.Tail(10)

	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLog_List_CorruptLine(t *testing.T) {
	dir := t.TempDir()
	log := New(dir, &testutil.MockClock{})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2026-08-01.jsonl"), []byte("{broken\n"), 0o640))

	_, err := log.List("2026-08-01")

	assert.ErrorIs(t, err, domain.ErrStateCorruption)
}
