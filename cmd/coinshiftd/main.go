// coinshiftd is the daemon and operator CLI for the Coinshift swap core, a
// single binary combining a daemon lifecycle (load config, start, wait on
// signal, shut down) with a Command-per-operation client surface.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/coinshift-network/coinshiftd/internal/config"
	"github.com/coinshift-network/coinshiftd/internal/interface/jsonrpc"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "coinshiftd"
	app.Usage = "Coinshift L2->L1 atomic swap core: daemon and operator CLI"
	app.Flags = []cli.Flag{
		config.Datadir, config.Port, config.LogLevel, config.DbType,
		config.L1Chain, config.HealthCheckInterval,
	}
	app.Action = runDaemon
	app.Commands = []*cli.Command{
		createSwapCommand,
		claimSwapCommand,
		updateSwapL1TxidCommand,
		getSwapStatusCommand,
		listSwapsCommand,
		listSwapsByRecipientCommand,
		reconstructSwapsCommand,
		cleanupOrphanedLocksCommand,
		getL1HealthCommand,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("coinshiftd: %s", err)
	}
}

// runDaemon is the app's default action (no subcommand given): it loads
// Config, wires every collaborator via AppService, and serves the JSON-RPC
// surface until a termination signal arrives, in arkd-wallet's
// load-config/start-service/wait-on-signal shape.
func runDaemon(c *cli.Context) error {
	cfg, err := config.LoadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log.SetLevel(log.Level(cfg.LogLevel))
	log.Infof("coinshiftd config: %s", cfg)

	svc, err := cfg.AppService()
	if err != nil {
		return err
	}
	defer cfg.Close()

	rpcServer := jsonrpc.NewServer(svc)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: rpcServer.Handler(),
	}

	go func() {
		log.Infof("coinshiftd listening on :%d", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("JSON-RPC server failed: %s", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, os.Interrupt)
	<-sigChan

	log.Info("shutting down coinshiftd...")
	return httpServer.Close()
}
