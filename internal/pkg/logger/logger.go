package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docent/internal/config"
)

// Init 初始化全局日志
func Init(cfg *config.LogConfig) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	switch cfg.TimeFormat {
	case "Unix":
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	case "UnixMs":
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	default:
		zerolog.TimeFieldFormat = time.RFC3339
	}

	var output io.Writer = os.Stderr
	fd := os.Stderr.Fd()
	if cfg.Output == "stdout" {
		output, fd = os.Stdout, os.Stdout.Fd()
	}
	if cfg.Output == "file" && cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return err
		}
		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return err
		}
		output = file
	}

	// Console 格式 (终端友好)；auto 时仅在终端上使用
	if useConsole(cfg, fd) {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	log.Logger = zerolog.New(output).With().Timestamp().Caller().Logger()

	return nil
}

func useConsole(cfg *config.LogConfig, fd uintptr) bool {
	switch cfg.Format {
	case "console":
		return true
	case "auto":
		return cfg.Output != "file" && (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
	default:
		return false
	}
}

// WithRun 返回携带 run_id 字段的 logger，并替换全局 logger
func WithRun(runID string) zerolog.Logger {
	log.Logger = log.Logger.With().Str("run_id", runID).Logger()
	return log.Logger
}
