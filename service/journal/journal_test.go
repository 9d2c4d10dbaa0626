package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJournalRecordAndFlush(t *testing.T) {
	ctx := context.Background()
	service := New("mem://localhost/gently/journal")

	service.Record(Entry{TaskID: "t-1", TaskName: "first", Event: EventSpawned})
	service.Record(Entry{TaskID: "t-1", TaskName: "first", Event: EventCompleted})
	service.Record(Entry{TaskID: "t-2", TaskName: "second", Event: EventFailed, Error: "boom"})
	assert.Equal(t, 3, service.Len())

	entries := service.Entries()
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].At.IsZero())

	URL, err := service.Flush(ctx)
	assert.NoError(t, err)
	assert.NotEmpty(t, URL)
	assert.Equal(t, 0, service.Len())

	loaded, err := service.Load(ctx, URL)
	assert.NoError(t, err)
	assert.Len(t, loaded, 3)
	assert.Equal(t, EventSpawned, loaded[0].Event)
	assert.Equal(t, EventCompleted, loaded[1].Event)
	assert.Equal(t, "boom", loaded[2].Error)
}

func TestJournalFlushEmpty(t *testing.T) {
	service := New("mem://localhost/gently/empty")
	URL, err := service.Flush(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, URL)
}

func TestJournalPreservesExplicitStamp(t *testing.T) {
	service := New("mem://localhost/gently/stamp")
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	service.Record(Entry{ID: "fixed", TaskID: "t-1", Event: EventDropped, At: at})

	entries := service.Entries()
	assert.Equal(t, "fixed", entries[0].ID)
	assert.Equal(t, at, entries[0].At)
}
