package service

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tvshow-api/internal/timeutil"
)

// Backuper is anything that can take a database backup
type Backuper interface {
	Backup() (string, error)
}

// Scheduler runs the weekly database backup
type Scheduler struct {
	backup   Backuper
	logger   zerolog.Logger
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	started  bool
}

// NewScheduler creates a new Scheduler
func NewScheduler(backup Backuper, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		backup:   backup,
		logger:   logger.With().Str("component", "scheduler").Logger(),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the backup loop in the background
func (s *Scheduler) Start() {
	s.started = true
	go s.runWeeklyBackupScheduler()
	s.logger.Info().Msg("Scheduler started - weekly backup on Sundays at 03:00")
}

// Stop stops the loop and waits for it to return. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	if s.started {
		<-s.done
	}
}

func (s *Scheduler) runWeeklyBackupScheduler() {
	defer close(s.done)
	for {
		nextRun := NextBackupTime(timeutil.Now())
		duration := nextRun.Sub(timeutil.Now())

		s.logger.Info().
			Str("next_run", nextRun.Format("2006-01-02 15:04:05")).
			Dur("in", duration.Round(time.Hour)).
			Msg("Next backup scheduled")

		timer := time.NewTimer(duration)
		select {
		case <-timer.C:
			s.runBackup()
		case <-s.stopChan:
			timer.Stop()
			return
		}
	}
}

func (s *Scheduler) runBackup() {
	s.logger.Info().Msg("Running weekly backup")
	backupPath, err := s.backup.Backup()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create backup")
		return
	}
	s.logger.Info().Str("path", backupPath).Msg("Backup created")
}

// NextBackupTime returns the next Sunday 03:00 strictly after now, in now's location
func NextBackupTime(now time.Time) time.Time {
	daysUntilSunday := (7 - int(now.Weekday())) % 7
	if daysUntilSunday == 0 {
		backupTime := time.Date(now.Year(), now.Month(), now.Day(), 3, 0, 0, 0, now.Location())
		if !now.Before(backupTime) {
			daysUntilSunday = 7
		}
	}

	nextSunday := now.AddDate(0, 0, daysUntilSunday)
	return time.Date(nextSunday.Year(), nextSunday.Month(), nextSunday.Day(), 3, 0, 0, 0, now.Location())
}
