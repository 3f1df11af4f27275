//go:build linux || darwin

package workspace

import (
	"fmt"
	"syscall"
)

// GetDiskUsage returns disk usage of the filesystem holding path.
func GetDiskUsage(path string) (*DiskUsage, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return nil, fmt.Errorf("failed to get disk usage: %w", err)
	}

	totalBytes := stat.Blocks * uint64(stat.Bsize)
	freeBytes := stat.Bavail * uint64(stat.Bsize)
	usedBytes := totalBytes - freeBytes

	const gb = 1024 * 1024 * 1024
	usage := &DiskUsage{
		TotalGB:     float64(totalBytes) / gb,
		UsedGB:      float64(usedBytes) / gb,
		AvailableGB: float64(freeBytes) / gb,
	}
	if usage.TotalGB > 0 {
		usage.UsagePercent = usage.UsedGB / usage.TotalGB * 100
	}
	return usage, nil
}
