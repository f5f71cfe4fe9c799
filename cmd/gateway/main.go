package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	gateway "github.com/cryptocrystian/pravado-gateway"
	"github.com/cryptocrystian/pravado-gateway/config"
	"github.com/cryptocrystian/pravado-gateway/proxy"
	"github.com/cryptocrystian/pravado-gateway/server"
)

func main() {
	configPath := flag.String("config", "gateway.yaml", "path to the gateway config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalln(err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalln(err)
	}
	defer func() { _ = logger.Sync() }()

	var coreSign proxy.SignFunc
	if cfg.Core.Token != "" {
		coreSign = proxy.BearerAuth(cfg.Core.Token)
	}
	var prSign proxy.SignFunc
	if cfg.PR.APIKey != "" {
		prSign = proxy.APIKeyAuth(cfg.PR.APIKey)
	}

	core := proxy.NewBackend("core", cfg.Core.BaseURL, coreSign,
		proxy.WithTimeout(cfg.Core.Timeout.Std()),
		proxy.WithLogger(logger))
	pr := proxy.NewBackend("pr", cfg.PR.BaseURL, prSign,
		proxy.WithTimeout(cfg.PR.Timeout.Std()),
		proxy.WithLogger(logger))

	svr := server.New(core, pr, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting gateway",
		zap.String("version", gateway.BuiltVersion.String()),
		zap.String("core_backend", cfg.Core.BaseURL),
		zap.String("pr_backend", cfg.PR.BaseURL))

	if err := svr.Run(ctx, cfg.Listen, cfg.MetricsListen); err != nil {
		logger.Fatal("gateway stopped", zap.Error(err))
	}
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc.Encoding = "console"
	}
	if cfg.Level != "" {
		lvl, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = lvl
	}
	return zc.Build()
}
