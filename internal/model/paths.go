package model

import (
	"os"
	"path/filepath"
)

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "quotescan")
	}
	return filepath.Join(os.TempDir(), "quotescan-cache")
}
