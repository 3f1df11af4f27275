// Package workspace manages the per-run scratch directory holding the
// silent stabilized video before audio is copied back in.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const sessionPrefix = "vidstab_"

// DiskUsage represents disk space information
type DiskUsage struct {
	TotalGB      float64
	UsedGB       float64
	AvailableGB  float64
	UsagePercent float64
}

// Session is one run's scratch directory.
type Session struct {
	baseDir string
	id      string
	dir     string
}

// NewSession creates a fresh session directory under baseDir, or under the
// system temp directory when baseDir is empty.
func NewSession(baseDir string) (*Session, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	dir, err := os.MkdirTemp(baseDir, fmt.Sprintf("%s%d_", sessionPrefix, time.Now().Unix()))
	if err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &Session{baseDir: baseDir, id: filepath.Base(dir), dir: dir}, nil
}

func (s *Session) ID() string  { return s.id }
func (s *Session) Dir() string { return s.dir }

// Path names a file inside the session.
func (s *Session) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// EstimateStorageNeeds guesses the scratch space for re-encoding a video of
// inputBytes: the silent copy plus headroom for the encoder.
func EstimateStorageNeeds(inputBytes int64) float64 {
	return 1.5 * float64(inputBytes) / (1024 * 1024 * 1024)
}

// CheckDiskSpace verifies if there's enough disk space for processing
func (s *Session) CheckDiskSpace(estimatedUsageGB float64) (bool, string, error) {
	diskUsage, err := GetDiskUsage(s.dir)
	if err != nil {
		return false, "", err
	}

	if estimatedUsageGB > diskUsage.AvailableGB {
		return false, fmt.Sprintf("insufficient disk space: need %.1fGB, available %.1fGB",
			estimatedUsageGB, diskUsage.AvailableGB), nil
	}
	return true, fmt.Sprintf("sufficient disk space: %.1fGB available", diskUsage.AvailableGB), nil
}

// Export moves a session file to dst, copying when a rename across
// filesystems is refused.
func (s *Session) Export(name, dst string) error {
	src := s.Path(name)
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("failed to export %s: %w", name, err)
	}
	return os.Remove(src)
}

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

	if _, err := destFile.ReadFrom(sourceFile); err != nil {
		destFile.Close()
		return err
	}
	return destFile.Close()
}

// Cleanup removes all session data
func (s *Session) Cleanup() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to cleanup session %s: %w", s.id, err)
	}
	return nil
}

// ListOldSessions finds sessions in baseDir last modified before olderThan ago.
func ListOldSessions(baseDir string, olderThan time.Duration) ([]string, error) {
	cutoffTime := time.Now().Add(-olderThan)
	var oldSessions []string

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read base directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), sessionPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoffTime) {
			oldSessions = append(oldSessions, filepath.Join(baseDir, entry.Name()))
		}
	}

	sort.Strings(oldSessions)
	return oldSessions, nil
}

// CleanupOldSessions removes sessions left behind by interrupted runs and
// returns the directories it removed.
func CleanupOldSessions(baseDir string, olderThan time.Duration) ([]string, error) {
	oldSessions, err := ListOldSessions(baseDir, olderThan)
	if err != nil {
		return nil, err
	}

	var removed []string
	var errs []string
	for _, sessionDir := range oldSessions {
		if err := os.RemoveAll(sessionDir); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		removed = append(removed, sessionDir)
	}
	if len(errs) > 0 {
		return removed, fmt.Errorf("failed to remove old sessions: %s", strings.Join(errs, "; "))
	}
	return removed, nil
}
