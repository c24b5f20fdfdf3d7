package filesystem

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocalPath turns a file:// URI into a filesystem path. Plain paths are
// returned unchanged.
func LocalPath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil || u.Path == "" {
		return strings.TrimPrefix(uri, "file://")
	}
	return u.Path
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// DownloadsDir resolves the directory exported artifacts are copied to.
// A configured directory wins; otherwise XDG_DOWNLOAD_DIR, then ~/Downloads.
func DownloadsDir(configured string) (string, error) {
	if configured != "" {
		return ExpandHome(configured), nil
	}
	if xdg := os.Getenv("XDG_DOWNLOAD_DIR"); xdg != "" {
		return ExpandHome(xdg), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Downloads"), nil
}
