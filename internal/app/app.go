package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/ticontrol/internal/config"
	"github.com/five82/ticontrol/internal/control"
	"github.com/five82/ticontrol/internal/device"
	"github.com/five82/ticontrol/internal/logging"
	"github.com/five82/ticontrol/internal/state"
	"github.com/five82/ticontrol/internal/transport"
	"github.com/five82/ticontrol/internal/ui"
)

const initialSyncTimeout = time.Second

// Options configure the ticontrol application.
type Options struct {
	ConfigPath  string
	API         string        // overrides host-based selection when set
	ResyncEvery time.Duration // zero keeps the configured value
	Version     string
}

// Run boots the ticontrol TUI until the operator quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.ResyncEvery > 0 {
		cfg.ResyncEvery = opts.ResyncEvery
	}

	logger := logging.New(cfg.Log, opts.Version)
	defer logger.Close()

	api, err := resolveAPI(cfg, opts.API)
	if err != nil {
		return err
	}

	client, err := device.NewClient(api)
	if err != nil {
		return fmt.Errorf("init device client: %w", err)
	}
	client.SetVersion(opts.Version)
	push, err := transport.NewPushChannel(cfg, client.BaseURL(), logger)
	if err != nil {
		return fmt.Errorf("init push channel: %w", err)
	}
	adapter := transport.New(client, push, logger)

	runner := control.NewRunner(control.New(adapter, logger), &state.Store{}, logger)
	resync := NewResyncer(adapter, runner.HandleEvent, cfg.ResyncEvery, logger)
	wire(adapter, runner, resync.Trigger)

	logger.Info("starting", "api", api, "push", cfg.PushBackend, "resync", cfg.ResyncEvery)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		runner.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := adapter.Run(ctx); err != nil {
			logger.Error("push channel stopped", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		resync.Run(ctx)
	}()

	// Populate the first view before the UI draws.
	fetchCtx, fetchCancel := context.WithTimeout(ctx, fetchTimeout)
	runner.HandleEvent(adapter.Fetch(fetchCtx))
	fetchCancel()
	if err := runner.SyncTimeout(initialSyncTimeout); err != nil {
		logger.Warn("initial view not ready", "error", err)
	}

	uiErr := ui.Run(ui.Options{
		Intents:   runner,
		Updates:   runner.Updates(),
		Initial:   runner.Store().Snapshot(),
		ThemeName: cfg.Theme,
		LogPath:   cfg.Log.File,
		API:       api,
		Version:   opts.Version,
	}, tea.WithContext(ctx))
	interrupted := ctx.Err() != nil

	cancel()
	wg.Wait()
	adapter.Wait()
	logger.Info("stopped")

	if uiErr != nil && !(interrupted && errors.Is(uiErr, tea.ErrProgramKilled)) {
		return fmt.Errorf("run ui: %w", uiErr)
	}
	return nil
}

// resolveAPI returns override when set, otherwise the address selected by
// matching this machine's host name against the configured pattern.
func resolveAPI(cfg config.Config, override string) (string, error) {
	if api := strings.TrimSpace(override); api != "" {
		return api, nil
	}
	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("resolve host name: %w", err)
	}
	api, err := cfg.SelectAPI(hostname)
	if err != nil {
		return "", fmt.Errorf("select api: %w", err)
	}
	return api, nil
}
