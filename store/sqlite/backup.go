package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	backupPrefix = "hr_backup_"
	backupSuffix = ".db"
	backupLayout = "20060102_150405"
)

// BackupInfo describes one backup file.
type BackupInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	Size      int64     `json:"size"`
}

// Backup writes a consistent copy of the database into dir using
// VACUUM INTO and returns its description.
func (s *Store) Backup(ctx context.Context, dir string) (BackupInfo, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("failed to create backup dir: %w", err)
	}

	now := time.Now().UTC()
	name := backupPrefix + now.Format(backupLayout) + backupSuffix
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		name = backupPrefix + now.Format(backupLayout) + fmt.Sprintf("_%d", now.Nanosecond()) + backupSuffix
		path = filepath.Join(dir, name)
	}

	s.mu.Lock()
	_, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, path)
	s.mu.Unlock()
	if err != nil {
		return BackupInfo{}, fmt.Errorf("failed to write backup: %w", err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return BackupInfo{}, err
	}
	return BackupInfo{Name: name, Path: path, CreatedAt: now, Size: fi.Size()}, nil
}

// ListBackups returns the backups in dir, newest first. A missing dir is
// an empty list.
func ListBackups(dir string) ([]BackupInfo, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup dir: %w", err)
	}

	var out []BackupInfo
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), backupSuffix)
		if len(stamp) > len(backupLayout) {
			stamp = stamp[:len(backupLayout)]
		}
		created, err := time.Parse(backupLayout, stamp)
		if err != nil {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return nil, err
		}
		out = append(out, BackupInfo{
			Name:      name,
			Path:      filepath.Join(dir, name),
			CreatedAt: created,
			Size:      fi.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

// PruneBackups deletes backups created before cutoff and returns how many
// were removed.
func PruneBackups(dir string, cutoff time.Time) (int, error) {
	backups, err := ListBackups(dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, b := range backups {
		if !b.CreatedAt.Before(cutoff) {
			continue
		}
		if err := os.Remove(b.Path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", b.Name, err)
		}
		removed++
	}
	return removed, nil
}
