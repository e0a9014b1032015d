package summary

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roma7-7-7/study-attendance-bot/internal/ledger"
)

var jst = time.FixedZone("JST", 9*60*60)

type publisherFunc func(ctx context.Context, msg string) error

func (f publisherFunc) Publish(ctx context.Context, msg string) error {
	return f(ctx, msg)
}

func closed(name, date, from, to string) ledger.Row {
	return ledger.Row{Name: name, DateJoined: date, TimeJoined: from, TimeLeft: to, Duration: "-"}
}

func TestWindowAt(t *testing.T) {
	w := WindowAt(time.Date(2025, 3, 10, 0, 0, 5, 0, jst))

	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, jst), w.Start)
	assert.Equal(t, time.Date(2025, 3, 10, 23, 59, 59, 999_000_000, jst), w.End)
	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.Start.Add(-time.Millisecond)))
}

func TestAggregate(t *testing.T) {
	w := WindowAt(time.Date(2025, 3, 10, 0, 0, 0, 0, jst))

	tests := []struct {
		name     string
		rows     []ledger.Row
		expected []Total
	}{
		{
			name:     "empty ledger",
			rows:     nil,
			expected: nil,
		},
		{
			name: "only in-window closed rows count",
			rows: []ledger.Row{
				closed("alice", "2025/03/02", "09:00", "10:00"), // day before the window
				closed("alice", "2025/03/03", "09:00", "10:00"),
				closed("alice", "2025/03/10", "20:00", "20:30"),
				closed("alice", "2025/03/11", "09:00", "10:00"), // after the window
				{Name: "alice", DateJoined: "2025/03/05", TimeJoined: "09:00"},
				{Name: "bob", DateJoined: "", TimeJoined: "09:00", TimeLeft: "10:00"},
			},
			expected: []Total{{Name: "alice", Elapsed: 90 * time.Minute}},
		},
		{
			name: "ranked descending",
			rows: []ledger.Row{
				closed("alice", "2025/03/04", "09:00", "09:30"),
				closed("bob", "2025/03/04", "09:00", "11:00"),
				closed("carol", "2025/03/05", "09:00", "10:00"),
				closed("alice", "2025/03/06", "09:00", "09:15"),
			},
			expected: []Total{
				{Name: "bob", Elapsed: 2 * time.Hour},
				{Name: "carol", Elapsed: time.Hour},
				{Name: "alice", Elapsed: 45 * time.Minute},
			},
		},
		{
			name: "ties keep first-seen order",
			rows: []ledger.Row{
				closed("dave", "2025/03/04", "09:00", "09:30"),
				closed("erin", "2025/03/04", "09:00", "10:00"),
				closed("carol", "2025/03/04", "09:00", "10:00"),
				closed("dave", "2025/03/05", "09:00", "09:30"),
			},
			expected: []Total{
				{Name: "dave", Elapsed: time.Hour},
				{Name: "erin", Elapsed: time.Hour},
				{Name: "carol", Elapsed: time.Hour},
			},
		},
		{
			name: "session across midnight",
			rows: []ledger.Row{
				closed("alice", "2025/03/04", "23:30", "00:15"),
			},
			expected: []Total{{Name: "alice", Elapsed: 45 * time.Minute}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals, skipped := Aggregate(tt.rows, w)
			assert.Empty(t, skipped)
			assert.Equal(t, tt.expected, totals)
		})
	}
}

func TestAggregate_SkipsUnparsableRows(t *testing.T) {
	w := WindowAt(time.Date(2025, 3, 10, 0, 0, 0, 0, jst))

	totals, skipped := Aggregate([]ledger.Row{
		closed("alice", "not a date", "09:00", "10:00"),
		closed("bob", "2025/03/04", "nine", "10:00"),
		closed("carol", "2025/03/04", "09:00", "10:00"),
	}, w)

	assert.Len(t, skipped, 2)
	assert.Equal(t, []Total{{Name: "carol", Elapsed: time.Hour}}, totals)
}

func TestRender(t *testing.T) {
	w := WindowAt(time.Date(2025, 3, 10, 0, 0, 0, 0, jst))

	msg, err := Render(w, []Total{
		{Name: "bob", Elapsed: 2*time.Hour + 5*time.Second},
		{Name: "alice", Elapsed: 45 * time.Second},
	})
	require.NoError(t, err)
	assert.Equal(t, "03/03～03/10 集計結果\n1. bob 合計勉強時間 2時間0分5秒\n2. alice 合計勉強時間 45秒", msg)

	msg, err = Render(w, nil)
	require.NoError(t, err)
	assert.Equal(t, "03/03～03/10 集計結果\n", msg)
}

func TestReporter_Run(t *testing.T) {
	store := ledger.NewMemory(
		closed("alice", "2025/03/04", "09:00", "10:00"),
		closed("bob", "2025/03/05", "09:00", "11:00"),
	)
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 10, 0, 0, 0, 0, jst))
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	var got []string
	ok := publisherFunc(func(_ context.Context, msg string) error {
		got = append(got, msg)
		return nil
	})
	failing := publisherFunc(func(context.Context, string) error {
		return errors.New("push failed")
	})

	r := NewReporter(store, clock, log, failing, ok)
	err := r.Run(context.Background())
	require.Error(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "03/03～03/10 集計結果\n1. bob 合計勉強時間 2時間0分0秒\n2. alice 合計勉強時間 1時間0分0秒", got[0])
}

func TestReporter_EmptyLedgerStillSends(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 10, 0, 0, 0, 0, jst))
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	var got []string
	r := NewReporter(ledger.NewMemory(), clock, log, publisherFunc(func(_ context.Context, msg string) error {
		got = append(got, msg)
		return nil
	}))

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, []string{"03/03～03/10 集計結果\n"}, got)
}
