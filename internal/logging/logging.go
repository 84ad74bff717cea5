// Package logging builds the logr.Logger used across the CLI.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// New builds a zap-backed logger. format is "json" or "console"; level is one of
// debug, info, warn or error. Output goes to w, or stderr when w is nil.
func New(format, level string, w io.Writer) (logr.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return logr.Discard(), err
	}

	var development bool
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
	case "console":
		development = true
	default:
		return logr.Discard(), fmt.Errorf("unknown log format %q (want json or console)", format)
	}

	opts := zap.Options{
		Development: development,
		TimeEncoder: zapcore.RFC3339NanoTimeEncoder,
		Level:       lvl,
		DestWriter:  w,
	}
	return zap.New(zap.UseFlagOptions(&opts)), nil
}

// ParseLevel maps a level name to a zap level. Empty means info.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}
