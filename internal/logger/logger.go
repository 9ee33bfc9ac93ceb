package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/topthree/internal/constants"
)

var (
	// Logger is the global logger instance
	Logger *log.Logger

	discard = log.New(io.Discard)
)

// Config holds logger configuration
type Config struct {
	Debug     bool
	ConfigDir string
}

// Init initializes the global logger with the given configuration
func Init(cfg Config) error {
	logDir := filepath.Join(cfg.ConfigDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, constants.AppName+".log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := log.WarnLevel
	if cfg.Debug {
		level = log.DebugLevel
	}

	// Silent on stderr unless debugging
	var writer io.Writer = fileWriter
	if cfg.Debug {
		writer = io.MultiWriter(os.Stderr, fileWriter)
	}

	Logger = log.NewWithOptions(writer, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
	})

	return nil
}

// Default returns the global logger, or a logger that discards everything
// when Init has not been called.
func Default() *log.Logger {
	if Logger != nil {
		return Logger
	}
	return discard
}

// With returns a child of the global logger carrying the given key/value pairs.
func With(keyvals ...interface{}) *log.Logger {
	return Default().With(keyvals...)
}

// Package-level helpers log through Default, so they are safe before Init.

func Debug(msg string, keyvals ...interface{}) { Default().Debug(msg, keyvals...) }
func Info(msg string, keyvals ...interface{})  { Default().Info(msg, keyvals...) }
func Warn(msg string, keyvals ...interface{})  { Default().Warn(msg, keyvals...) }
func Error(msg string, keyvals ...interface{}) { Default().Error(msg, keyvals...) }

// Fatal logs msg and exits with status 1 even when logging is not initialized.
func Fatal(msg string, keyvals ...interface{}) {
	Default().Error(msg, keyvals...)
	os.Exit(1)
}
