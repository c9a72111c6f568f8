// Package logging builds the daemon's zap loggers and forwards log
// entries to the network controller as logging notifications.
package logging

import (
	"os"
	"strings"

	"github.com/andaru/netctrl/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLogLevel overrides the configured log level when set
const EnvLogLevel = "NETCTRL_LOG_LEVEL"

// Options configure New
type Options struct {
	Level       string
	Development bool
	Name        string
}

// New returns a production (JSON) or development (console) logger
func New(opts Options) (*zap.Logger, error) {
	level := opts.Level
	if env := strings.TrimSpace(os.Getenv(EnvLogLevel)); env != "" {
		level = env
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if opts.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	log, err := zc.Build()
	if err != nil {
		return nil, err
	}
	if opts.Name != "" {
		log = log.Named(opts.Name)
	}
	return log, nil
}

// ParseLevel parses a level name. The empty string is the info level.
func ParseLevel(s string) (zapcore.Level, error) {
	name, err := config.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel, err
	}
	return zapcore.ParseLevel(name)
}
