//go:build !linux && !darwin

package workspace

import "errors"

// GetDiskUsage is not implemented on this platform.
func GetDiskUsage(path string) (*DiskUsage, error) {
	return nil, errors.New("disk usage not supported on this platform")
}
