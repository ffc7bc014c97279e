package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/five82/ticontrol/internal/app"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	api := flag.String("api", "", "device server address, bypasses host selection (optional)")
	resyncSeconds := flag.Int("resync", 0, "full refresh interval in seconds (optional, 0 keeps the config value)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("ticontrol", version)
		return 0
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		API:        *api,
		Version:    version,
	}
	if secs := *resyncSeconds; secs > 0 {
		opts.ResyncEvery = time.Duration(secs) * time.Second
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "ticontrol: %v\n", err)
		return 1
	}
	return 0
}
