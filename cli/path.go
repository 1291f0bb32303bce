package cli

import (
	"os"
	"path/filepath"
	"sync"
)

// cacheDir returns the directory used for transient files such as profiler
// output. It prefers the user cache directory and degrades toward the
// working directory when the environment provides nothing better.
var cacheDir = sync.OnceValue(
	func() string {
		dir, err := os.UserCacheDir()
		if err != nil {
			dir, err = os.UserHomeDir()
			if err == nil {
				dir = filepath.Join(dir, ".cache")
			} else {
				dir, err = os.Getwd()
				if err != nil {
					dir = "."
				}
			}
		}

		return filepath.Join(dir, appName)
	},
)
