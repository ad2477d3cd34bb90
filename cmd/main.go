package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"schrodinger"
	"schrodinger/config"
	"schrodinger/debug"
	"schrodinger/load"
	"schrodinger/logging"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	fs := pflag.NewFlagSet("schrodinger", pflag.ContinueOnError)
	path := fs.StringP("config", "c", "", "configuration file (yaml, json or toml)")
	export := fs.Bool("export", false, "print the layer structure and exit")
	serve := fs.String("serve", "", "serve the charts on this address after solving")
	config.Flags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	if err := run(*path, *export, *serve, fs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string, export bool, serve string, fs *pflag.FlagSet) error {
	cfg, err := config.Load(path, fs)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	sim, err := schrodinger.New(cfg, log)
	if err != nil {
		return err
	}
	if export {
		return load.Export(os.Stdout, sim.Structure)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	points, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	sim.Report(os.Stdout, points)
	if err := sim.Write(ctx, points); err != nil {
		return err
	}
	if serve == "" {
		return nil
	}
	srv := &http.Server{Addr: serve, Handler: http.HandlerFunc(debug.NewCharts(sim.Record).Handler)}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	log.Info("serving charts", zap.String("addr", serve))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
