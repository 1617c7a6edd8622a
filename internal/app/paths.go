package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths stores resolved runtime file locations for user config, logs, and cache.
type Paths struct {
	RootDir    string
	ConfigFile string
	DBFile     string
	LogFile    string
	EnvFile    string
	CacheDir   string
}

func ResolvePaths() (Paths, error) {
	cfgRoot, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("resolve config dir: %w", err)
	}
	cacheRoot, err := os.UserCacheDir()
	if err != nil {
		return Paths{}, fmt.Errorf("resolve cache dir: %w", err)
	}

	return PathsUnder(filepath.Join(cfgRoot, Name), filepath.Join(cacheRoot, Name))
}

// PathsUnder lays out app files below root and cache, creating both.
func PathsUnder(root, cache string) (Paths, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return Paths{}, fmt.Errorf("create app config dir: %w", err)
	}
	if err := os.MkdirAll(cache, 0o750); err != nil {
		return Paths{}, fmt.Errorf("create app cache dir: %w", err)
	}

	return Paths{
		RootDir:    root,
		ConfigFile: filepath.Join(root, ConfigFilename),
		DBFile:     filepath.Join(root, DBFilename),
		LogFile:    filepath.Join(root, LogFilename),
		EnvFile:    filepath.Join(root, EnvFilename),
		CacheDir:   cache,
	}, nil
}
