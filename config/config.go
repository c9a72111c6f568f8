package config

import (
	"net"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andaru/netctrl/ncerr"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

// Defaults
const (
	DefaultBindAddress = "0.0.0.0"
	DefaultBindPort    = 50002
	DefaultLogLevel    = "info"
	DefaultQueueSize   = 1024
	DefaultRecvSize    = 4096
)

// Config is the network controller channel configuration
type Config struct {
	BindAddress string `toml:"bind_address"`
	BindPort    Port   `toml:"bind_port"`

	LogLevel    string `toml:"log_level"`
	Development bool   `toml:"development"`
	// LogForwardLevel is the minimum level of log entries forwarded to
	// the controller as logging notifications. Empty disables forwarding.
	LogForwardLevel string `toml:"log_forward_level"`

	StrictLogic    bool `toml:"strict_logic"`
	RecvBufferSize int  `toml:"recv_buffer_size"`
	QueueSize      int  `toml:"queue_size"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		BindAddress:    DefaultBindAddress,
		BindPort:       DefaultBindPort,
		LogLevel:       DefaultLogLevel,
		RecvBufferSize: DefaultRecvSize,
		QueueSize:      DefaultQueueSize,
	}
}

// Load reads the configuration file at path over Default. The format
// is chosen by the extension: ".toml" or ".xml".
func Load(path string) (Config, error) {
	cfg := Default()
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = loadTOML(path, &cfg)
	case ".xml":
		err = loadXML(path, &cfg)
	default:
		return Config{}, ncerr.InvalidConfig(ncerr.WithMessage("unsupported config file extension " + strconv.Quote(ext)))
	}
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks every setting
func (c Config) Validate() error {
	if err := ValidateBindAddress(c.BindAddress); err != nil {
		return err
	}
	if err := ValidateBindPort(int(c.BindPort)); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogForwardLevel != "" {
		if _, err := ParseLevel(c.LogForwardLevel); err != nil {
			return err
		}
	}
	if c.RecvBufferSize < 0 {
		return ncerr.InvalidConfig(ncerr.WithMessage("recv_buffer_size must not be negative"))
	}
	if c.QueueSize < 0 {
		return ncerr.InvalidConfig(ncerr.WithMessage("queue_size must not be negative"))
	}
	return nil
}

// ValidateBindAddress checks that addr is an IPv4 address literal
func ValidateBindAddress(addr string) error {
	ip := net.ParseIP(addr)
	if ip == nil || ip.To4() == nil || strings.Contains(addr, ":") {
		return ncerr.InvalidBindAddress(ncerr.WithMessage("Invalid rpc ip address."))
	}
	return nil
}

// ValidateBindPort checks that port is a usable TCP port number
func ValidateBindPort(port int) error {
	if port <= 0 || port > 65535 {
		return ncerr.InvalidBindPort(ncerr.WithMessage("Invalid rpc port number."))
	}
	return nil
}

// ParseBindPort parses and validates a decimal port number
func ParseBindPort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, ncerr.InvalidBindPort(ncerr.WithMessage("Invalid rpc port number."), ncerr.WithCause(err))
	}
	if err := ValidateBindPort(port); err != nil {
		return 0, err
	}
	return port, nil
}

// ParseLevel checks a log level name and returns its canonical form.
// Accepted names are the zap level names in any case, and "warning".
func ParseLevel(s string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warning" {
		name = "warn"
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return "", ncerr.InvalidConfig(ncerr.WithMessage("unknown log level "+strconv.Quote(s)), ncerr.WithCause(err))
	}
	return level.String(), nil
}

// Port is a TCP port number which may be configured as an integer or
// as a decimal string
type Port int

// UnmarshalTOML implements toml.Unmarshaler
func (p *Port) UnmarshalTOML(v interface{}) error {
	switch n := v.(type) {
	case int64:
		*p = Port(n)
		return nil
	case string:
		port, err := ParseBindPort(n)
		if err != nil {
			return err
		}
		*p = Port(port)
		return nil
	}
	return ncerr.InvalidBindPort(ncerr.WithMessage("Invalid rpc port number."))
}

func (p *Port) UnmarshalText(b []byte) error {
	port, err := ParseBindPort(string(b))
	if err != nil {
		return err
	}
	*p = Port(port)
	return nil
}
