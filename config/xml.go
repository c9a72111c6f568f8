package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/andaru/netctrl/ncerr"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

var (
	xpRoot           = xpath.MustCompile(`/netctrl`)
	xpBindAddress    = xpath.MustCompile(`/netctrl/bind/address`)
	xpBindPort       = xpath.MustCompile(`/netctrl/bind/port`)
	xpLogLevel       = xpath.MustCompile(`/netctrl/log/level`)
	xpDevelopment    = xpath.MustCompile(`/netctrl/log/development`)
	xpForwardLevel   = xpath.MustCompile(`/netctrl/log/forward-level`)
	xpStrictLogic    = xpath.MustCompile(`/netctrl/session/strict-logic`)
	xpRecvBufferSize = xpath.MustCompile(`/netctrl/session/recv-buffer-size`)
	xpQueueSize      = xpath.MustCompile(`/netctrl/queue-size`)
)

func loadXML(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return ncerr.InvalidConfig(ncerr.WithMessage("open "+path), ncerr.WithCause(err))
	}
	defer f.Close()
	doc, err := xmlquery.Parse(f)
	if err != nil {
		return ncerr.InvalidConfig(ncerr.WithMessage("parse "+path), ncerr.WithCause(err))
	}
	return applyXML(doc, cfg)
}

func applyXML(doc *xmlquery.Node, cfg *Config) error {
	if xmlquery.QuerySelector(doc, xpRoot) == nil {
		return ncerr.InvalidConfig(ncerr.WithMessage("missing <netctrl> element"))
	}
	text := func(expr *xpath.Expr) (string, bool) {
		n := xmlquery.QuerySelector(doc, expr)
		if n == nil {
			return "", false
		}
		return strings.TrimSpace(n.InnerText()), true
	}
	var err error
	setBool := func(expr *xpath.Expr, dst *bool) {
		if v, ok := text(expr); ok && err == nil {
			if *dst, err = strconv.ParseBool(v); err != nil {
				err = ncerr.InvalidConfig(ncerr.WithMessage("invalid boolean "+strconv.Quote(v)), ncerr.WithCause(err))
			}
		}
	}
	setInt := func(expr *xpath.Expr, dst *int) {
		if v, ok := text(expr); ok && err == nil {
			if *dst, err = strconv.Atoi(v); err != nil {
				err = ncerr.InvalidConfig(ncerr.WithMessage("invalid integer "+strconv.Quote(v)), ncerr.WithCause(err))
			}
		}
	}

	if v, ok := text(xpBindAddress); ok {
		cfg.BindAddress = v
	}
	if v, ok := text(xpBindPort); ok {
		if err := cfg.BindPort.UnmarshalText([]byte(v)); err != nil {
			return err
		}
	}
	if v, ok := text(xpLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := text(xpForwardLevel); ok {
		cfg.LogForwardLevel = v
	}
	setBool(xpDevelopment, &cfg.Development)
	setBool(xpStrictLogic, &cfg.StrictLogic)
	setInt(xpRecvBufferSize, &cfg.RecvBufferSize)
	setInt(xpQueueSize, &cfg.QueueSize)
	return err
}
