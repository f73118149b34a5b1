package service

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNextBackupTime(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "midweek goes to coming sunday",
			now:  time.Date(2026, 10, 14, 12, 0, 0, 0, loc), // Wednesday
			want: time.Date(2026, 10, 18, 3, 0, 0, 0, loc),
		},
		{
			name: "sunday before three runs same day",
			now:  time.Date(2026, 10, 18, 1, 30, 0, 0, loc),
			want: time.Date(2026, 10, 18, 3, 0, 0, 0, loc),
		},
		{
			name: "sunday at three waits a week",
			now:  time.Date(2026, 10, 18, 3, 0, 0, 0, loc),
			want: time.Date(2026, 10, 25, 3, 0, 0, 0, loc),
		},
		{
			name: "saturday night",
			now:  time.Date(2026, 10, 17, 23, 59, 0, 0, loc),
			want: time.Date(2026, 10, 18, 3, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextBackupTime(tt.now)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
			assert.Equal(t, time.Sunday, got.Weekday())
		})
	}
}

type countingBackuper struct {
	calls int
}

func (c *countingBackuper) Backup() (string, error) {
	c.calls++
	return "backup.db", nil
}

func TestSchedulerStop(t *testing.T) {
	b := &countingBackuper{}
	s := NewScheduler(b, zerolog.Nop())
	s.Start()

	done := make(chan struct{})
	go func() {
		s.Stop()
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, 0, b.calls)
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	s := NewScheduler(&countingBackuper{}, zerolog.Nop())
	s.Stop()
}
