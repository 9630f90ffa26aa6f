package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/vsgo/appcore/internal/config"
	"github.com/vsgo/appcore/internal/emulator"
	"github.com/vsgo/appcore/internal/services/lifecycle"
	"github.com/vsgo/appcore/pkg/logger"
)

func main() {
	addr := flag.String("addr", "0.0.0.0:9099", "listen address")
	secret := flag.String("secret", "emulator-dev-secret", "token signing secret")
	tokenTTL := flag.Duration("token-ttl", time.Hour, "issued token lifetime")
	strict := flag.Bool("strict", false, "reject writes carrying invalid tokens")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	emu := emulator.New(emulator.Config{
		Secret:       *secret,
		TokenTTL:     *tokenTTL,
		StrictWrites: *strict,
	}, zapLogger)

	server := &fasthttp.Server{
		Handler: emu.Handler(),
		Name:    "vsgo-emulator",
	}

	go func() {
		zapLogger.Info("emulator started", zap.String("address", *addr), zap.Bool("strict", *strict))
		if err := server.ListenAndServe(*addr); err != nil {
			zapLogger.Fatal("emulator crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
