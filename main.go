package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/racampos/mintory/chain"
	"github.com/racampos/mintory/config"
	"github.com/racampos/mintory/coordinator"
	"github.com/racampos/mintory/issuer"
	"github.com/racampos/mintory/prep"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.L().Fatal("load config", zap.Error(err))
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	if err := os.MkdirAll(filepath.Dir(cfg.EventStorePath), 0755); err != nil {
		logger.Fatal("create data dir", zap.Error(err))
	}
	events, err := chain.NewBoltEventStore(cfg.EventStorePath)
	if err != nil {
		logger.Fatal("open event store", zap.Error(err))
	}
	defer events.Close()

	ledger := chain.New(events, chain.WithLogger(logger))

	admin := cfg.Admin()
	iss := issuer.New(cfg.Issuer(), admin)
	coord := coordinator.New(cfg.Coordinator(), admin, iss, iss)
	ledger.Register(iss.Address(), iss)
	ledger.Register(coord.Address(), coord)

	// The coordinator only gets to mint once the issuer points at it.
	bootCtx := chain.NewCallContext(admin, ledger.Now(), common.Hash{})
	if err := iss.SetAuthorizedCaller(bootCtx, coord.Address()); err != nil {
		logger.Fatal("configure authorized caller", zap.Error(err))
	}

	svc := prep.NewService(
		prep.Addresses{Coordinator: coord.Address(), Issuer: iss.Address()},
		ledger,
		coord,
		iss,
		events,
		logger.Named("prep"),
		prep.WithClock(ledger.Now),
	)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: prep.NewRouter(svc),
	}

	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		logger.Info("shutting down")
		server.Close()
	}()

	logger.Info("listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("coordinator", coord.Address().Hex()),
		zap.String("issuer", iss.Address().Hex()))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server closed", zap.Error(err))
	}
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
