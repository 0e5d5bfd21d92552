package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"

	"docent/internal/config"
)

const lockFileName = ".docent.lock"

// acquireLock 对 output_dir 加排他锁，避免两个进程交错写入产物
func acquireLock(cfg *config.Config) (func(), error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	lockPath := filepath.Join(cfg.OutputDir, lockFileName)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another docent process is using %s", cfg.OutputDir)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			log.Warn().Err(err).Str("lock", lockPath).Msg("failed to release lock")
		}
	}, nil
}
