package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// SupportedInputFormats lists the containers the decoder is expected to open.
var SupportedInputFormats = []string{".mp4", ".mkv", ".mov", ".avi", ".webm", ".m4v", ".wmv"}

// DefaultOutputExt is used when the input has no extension.
const DefaultOutputExt = ".mp4"

const outputSuffix = "_stabilized"

// getSystemDirectories returns platform-specific system directories to protect
func getSystemDirectories() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			"C:\\Windows",
			"C:\\Program Files",
			"C:\\Program Files (x86)",
			"C:\\ProgramData",
		}
	case "darwin":
		return []string{"/System", "/usr", "/bin", "/sbin", "/etc", "/private/etc", "/Applications"}
	default:
		return []string{"/etc", "/usr", "/bin", "/sbin", "/boot", "/sys", "/proc"}
	}
}

func normalizePathForComparison(path string) string {
	if runtime.GOOS == "windows" {
		return strings.ToLower(filepath.Clean(path))
	}
	return filepath.Clean(path)
}

// CleanPath trims whitespace and the quotes Finder and Explorer add around
// dragged-in paths.
func CleanPath(input string) string {
	cleaned := strings.TrimSpace(input)
	if len(cleaned) >= 2 {
		if (cleaned[0] == '\'' && cleaned[len(cleaned)-1] == '\'') ||
			(cleaned[0] == '"' && cleaned[len(cleaned)-1] == '"') {
			cleaned = cleaned[1 : len(cleaned)-1]
		}
	}
	return strings.TrimSpace(cleaned)
}

// ValidateInputPath checks that input names a readable, non-empty video file
// in a supported container.
func ValidateInputPath(input string) error {
	cleanedPath := CleanPath(input)
	if cleanedPath == "" {
		return fmt.Errorf("path cannot be empty")
	}

	absPath, err := filepath.Abs(cleanedPath)
	if err != nil {
		return fmt.Errorf("invalid path format: %w", err)
	}
	if err := validatePathCharacters(absPath); err != nil {
		return err
	}

	fileInfo, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", absPath)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if fileInfo.IsDir() {
		return fmt.Errorf("path points to a directory, not a file: %s", absPath)
	}

	ext := strings.ToLower(filepath.Ext(absPath))
	if !isSupported(ext) {
		return fmt.Errorf("unsupported file format: %q. Supported formats: %s",
			ext, strings.Join(SupportedInputFormats, ", "))
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty")
	}

	file, err := os.Open(absPath)
	if err != nil {
		return fmt.Errorf("cannot read file: %w", err)
	}
	return file.Close()
}

func isSupported(ext string) bool {
	for _, supported := range SupportedInputFormats {
		if ext == supported {
			return true
		}
	}
	return false
}

// ValidateOutputPath checks that outputPath can be created or overwritten.
func ValidateOutputPath(outputPath string) error {
	cleanedPath := CleanPath(outputPath)
	if cleanedPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	if strings.Contains(cleanedPath, "..") {
		return fmt.Errorf("path cannot contain '..' (directory traversal)")
	}

	absPath, err := filepath.Abs(cleanedPath)
	if err != nil {
		return fmt.Errorf("invalid path format: %w", err)
	}
	if err := validatePathCharacters(absPath); err != nil {
		return err
	}

	if fileInfo, err := os.Stat(absPath); err == nil && fileInfo.IsDir() {
		return fmt.Errorf("output path points to an existing directory: %s", absPath)
	}

	parentDir := filepath.Dir(absPath)
	parentInfo, err := os.Stat(parentDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("output directory does not exist: %s", parentDir)
	}
	if err != nil {
		return fmt.Errorf("cannot access output directory: %w", err)
	}
	if !parentInfo.IsDir() {
		return fmt.Errorf("output parent path is not a directory: %s", parentDir)
	}

	if err := validatePathSecurity(absPath); err != nil {
		return fmt.Errorf("security validation failed: %w", err)
	}
	if err := checkWritePermission(parentDir); err != nil {
		return fmt.Errorf("cannot write to output directory: %w", err)
	}
	return nil
}

// DefaultOutputPath places the result next to the input as
// <name>_stabilized<ext>.
func DefaultOutputPath(input string) string {
	cleaned := CleanPath(input)
	ext := filepath.Ext(cleaned)
	base := strings.TrimSuffix(cleaned, ext)
	if ext == "" {
		ext = DefaultOutputExt
	}
	return base + outputSuffix + ext
}

func checkWritePermission(dir string) error {
	file, err := os.CreateTemp(dir, ".vidstab_write_test")
	if err != nil {
		return fmt.Errorf("no write permission: %w", err)
	}
	name := file.Name()
	file.Close()
	return os.Remove(name)
}

func validatePathSecurity(path string) error {
	normalizedPath := normalizePathForComparison(path)
	for _, sysDir := range getSystemDirectories() {
		normalizedSysDir := normalizePathForComparison(sysDir)
		if normalizedPath == normalizedSysDir ||
			strings.HasPrefix(normalizedPath, normalizedSysDir+string(filepath.Separator)) {
			return fmt.Errorf("cannot write to system directory: %s", sysDir)
		}
	}
	return nil
}

// validatePathCharacters checks for invalid characters based on OS
func validatePathCharacters(path string) error {
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("path contains null bytes")
	}
	if runtime.GOOS != "windows" {
		return nil
	}

	// The volume name carries the only legal colon.
	rest := strings.TrimPrefix(path, filepath.VolumeName(path))
	for _, char := range []string{"<", ">", ":", "\"", "|", "?", "*"} {
		if strings.Contains(rest, char) {
			return fmt.Errorf("path contains invalid character: %s", char)
		}
	}

	baseName := strings.ToUpper(filepath.Base(path))
	if idx := strings.LastIndex(baseName, "."); idx != -1 {
		baseName = baseName[:idx]
	}
	reservedNames := []string{
		"CON", "PRN", "AUX", "NUL",
		"COM1", "COM2", "COM3", "COM4", "COM5", "COM6", "COM7", "COM8", "COM9",
		"LPT1", "LPT2", "LPT3", "LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9",
	}
	for _, reserved := range reservedNames {
		if baseName == reserved {
			return fmt.Errorf("path uses reserved Windows name: %s", reserved)
		}
	}
	return nil
}
