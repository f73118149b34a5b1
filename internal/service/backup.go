package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tvshow-api/internal/timeutil"
)

const (
	backupPrefix = "tvshows_backup_"
	backupSuffix = ".db"
)

// BackupService copies the SQLite database file into a backup directory
type BackupService struct {
	dbPath     string
	backupDir  string
	maxBackups int
	logger     zerolog.Logger
}

// NewBackupService creates a new BackupService. dataSource is the path or file: URI the database was opened with.
func NewBackupService(dataSource, backupDir string, maxBackups int, logger zerolog.Logger) *BackupService {
	if maxBackups < 1 {
		maxBackups = 1
	}
	return &BackupService{
		dbPath:     databaseFile(dataSource),
		backupDir:  backupDir,
		maxBackups: maxBackups,
		logger:     logger.With().Str("component", "backup").Logger(),
	}
}

// Backup creates a backup of the database and prunes the oldest ones
func (b *BackupService) Backup() (string, error) {
	if b.dbPath == "" {
		return "", fmt.Errorf("in-memory database cannot be backed up")
	}

	if err := os.MkdirAll(b.backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	timestamp := timeutil.Now().Format("2006-01-02_150405")
	backupPath := filepath.Join(b.backupDir, backupPrefix+timestamp+backupSuffix)

	if err := copyFile(b.dbPath, backupPath); err != nil {
		return "", fmt.Errorf("failed to copy database: %w", err)
	}

	if err := b.CleanOldBackups(); err != nil {
		// The backup itself succeeded
		b.logger.Warn().Err(err).Msg("Failed to clean old backups")
	}

	return backupPath, nil
}

// LastBackupTime returns the modification time of the newest backup, or the zero time when there is none
func (b *BackupService) LastBackupTime() (time.Time, error) {
	backups, err := b.listBackups()
	if err != nil {
		return time.Time{}, err
	}

	if len(backups) == 0 {
		return time.Time{}, nil
	}

	info, err := os.Stat(backups[len(backups)-1])
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat backup file: %w", err)
	}

	return info.ModTime(), nil
}

// CleanOldBackups removes old backups, keeping only the most recent maxBackups
func (b *BackupService) CleanOldBackups() error {
	backups, err := b.listBackups()
	if err != nil {
		return err
	}

	if len(backups) > b.maxBackups {
		for _, backup := range backups[:len(backups)-b.maxBackups] {
			if err := os.Remove(backup); err != nil {
				return fmt.Errorf("failed to delete old backup %s: %w", backup, err)
			}
		}
	}

	return nil
}

// listBackups returns backup files oldest first
func (b *BackupService) listBackups() ([]string, error) {
	entries, err := os.ReadDir(b.backupDir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), backupPrefix) && strings.HasSuffix(entry.Name(), backupSuffix) {
			backups = append(backups, filepath.Join(b.backupDir, entry.Name()))
		}
	}

	// Names embed the timestamp, so lexical order is chronological
	sort.Strings(backups)

	return backups, nil
}

// databaseFile maps a SQLite data source to a file path, or "" for in-memory databases
func databaseFile(dataSource string) string {
	if dataSource == ":memory:" || strings.Contains(dataSource, "mode=memory") {
		return ""
	}
	path := strings.TrimPrefix(dataSource, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == ":memory:" {
		return ""
	}
	return path
}

// copyFile copies a file from src to dst
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}
