package config

import (
	"github.com/BurntSushi/toml"
	"github.com/andaru/netctrl/ncerr"
)

func loadTOML(path string, cfg *Config) error {
	var raw Config
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ncerr.InvalidConfig(ncerr.WithMessage("parse "+path), ncerr.WithCause(err))
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return ncerr.InvalidConfig(ncerr.WithMessage("unknown setting " + undecoded[0].String() + " in " + path))
	}

	if meta.IsDefined("bind_address") {
		cfg.BindAddress = raw.BindAddress
	}
	if meta.IsDefined("bind_port") {
		cfg.BindPort = raw.BindPort
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = raw.LogLevel
	}
	if meta.IsDefined("development") {
		cfg.Development = raw.Development
	}
	if meta.IsDefined("log_forward_level") {
		cfg.LogForwardLevel = raw.LogForwardLevel
	}
	if meta.IsDefined("strict_logic") {
		cfg.StrictLogic = raw.StrictLogic
	}
	if meta.IsDefined("recv_buffer_size") {
		cfg.RecvBufferSize = raw.RecvBufferSize
	}
	if meta.IsDefined("queue_size") {
		cfg.QueueSize = raw.QueueSize
	}
	return nil
}
