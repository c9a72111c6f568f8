// netctrld serves the network controller RPC channel of a BGP speaker
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andaru/netctrl/config"
	"github.com/andaru/netctrl/logging"
	"github.com/andaru/netctrl/message"
	"github.com/andaru/netctrl/registry"
	"github.com/andaru/netctrl/server"
	"github.com/andaru/netctrl/session"
	"github.com/andaru/netctrl/sink"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Configuration file (.toml or .xml)")
	bind := flag.String("bind", config.DefaultBindAddress, "IPv4 address to listen on")
	port := flag.String("port", fmt.Sprint(config.DefaultBindPort), "TCP port to listen on")
	logLevel := flag.String("log-level", config.DefaultLogLevel, "Log level")
	dev := flag.Bool("dev", false, "Development (console) logging")
	strict := flag.Bool("strict", false, "Stop sessions on logic errors")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	// flags given on the command line override the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bind":
			cfg.BindAddress = *bind
		case "port":
			var p config.Port
			if err = p.UnmarshalText([]byte(*port)); err == nil {
				cfg.BindPort = p
			}
		case "log-level":
			cfg.LogLevel = *logLevel
		case "dev":
			cfg.Development = *dev
		case "strict":
			cfg.StrictLogic = *strict
		}
	})
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Development: cfg.Development, Name: "netctrld"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// server and registry logs are forwarded to the controller. Session
	// and transport logs must stay local: a failed send logs an error.
	forward := &notifier{}
	log := logger
	if cfg.LogForwardLevel != "" {
		if log, err = logging.Forward(logger, forward, cfg.LogForwardLevel); err != nil {
			logger.Fatal("invalid log forward level", zap.Error(err))
		}
	}

	routes := sink.New(cfg.QueueSize)
	defer routes.Close()
	ops := registry.New()
	srv := server.New(server.Config{
		Logger:   log,
		Registry: ops,
		Source:   routes,
		Session: session.Config{
			StrictLogic:    cfg.StrictLogic,
			RecvBufferSize: cfg.RecvBufferSize,
			Logger:         logger.Named("session"),
		},
	})
	forward.srv = srv

	ops.MustRegister("core.status", func(_ context.Context, _ registry.Args) (interface{}, error) {
		log.Debug("status requested")
		return map[string]interface{}{
			"status":        srv.Status().String(),
			"queued_routes": routes.Len(),
		}, nil
	})

	if err := srv.Start(ctx, cfg.BindAddress, int(cfg.BindPort)); err != nil {
		log.Error("server failed", zap.Error(err))
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// notifier forwards log entries to the server once it exists
type notifier struct {
	srv *server.Server
}

func (n *notifier) SendNotification(method string, params message.Params) error {
	if n.srv == nil {
		return nil
	}
	return n.srv.SendNotification(method, params)
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
