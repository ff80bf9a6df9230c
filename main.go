package nchorder

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/nchorder/nchorder/internal/chord"
	"github.com/nchorder/nchorder/internal/confproto"
	"github.com/nchorder/nchorder/internal/flashstore"
	"github.com/nchorder/nchorder/internal/ini"
	"github.com/nchorder/nchorder/internal/utils"
)

const hardwareRevision = 2

// Options carries the paths and addresses the daemon binds to.
// Zero values select the built-in defaults.
type Options struct {
	ConfigPath string
	LayoutPath string
	SerialPath string
	StreamPath string
	ListenAddr string
	LogLevel   string
}

func (o *Options) applyDefaults() {
	if o.ConfigPath == "" {
		o.ConfigPath = defaultConfigPath
	}
	if o.LayoutPath == "" {
		o.LayoutPath = "/var/lib/nchorder/layout.bin"
	}
	if o.SerialPath == "" {
		o.SerialPath = defaultSerialPath
	}
	if o.ListenAddr == "" {
		o.ListenAddr = ":8090"
	}
}

// Main boots the service: config, tables, storage, output backend,
// control channel, recognition loop, web surface. It blocks until
// SIGINT or SIGTERM.
func Main(opts Options) {
	opts.applyDefaults()
	setLogLevel(opts.LogLevel)
	utils.SetProcTitle("nchorderd")

	rootLogger.Info().Msg("starting nchorder")

	if err := LoadConfig(opts.ConfigPath); err != nil {
		rootLogger.Warn().Err(err).Msg("config load failed, using defaults")
	}

	tables := chord.NewTables(&chordLogger)
	store := newLayoutStore(tables, flashstore.New(opts.LayoutPath, storageLogger))
	store.bootstrap()

	emitter := newEmitter()
	defer emitter.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if initSerialPort(opts.SerialPath) {
		handler := confproto.NewHandler(store, hardwareRevision, rootLogger)
		go runControlChannel(ctx, handler)
	}

	settingsUpdates := make(chan ini.Settings, 1)
	watcher, err := WatchConfig(opts.ConfigPath, func(s ini.Settings) {
		// Single writer: replace any undrained update with the newest.
		for {
			select {
			case settingsUpdates <- s:
				return
			case <-settingsUpdates:
			}
		}
	})
	if err != nil {
		rootLogger.Warn().Err(err).Msg("config watch unavailable")
	} else {
		defer watcher.Close()
	}

	source := initButtonSource(opts.StreamPath)
	go runInputLoop(ctx, source, tables, emitter, settingsUpdates)

	router := setupRouter(tables, store)
	server := &http.Server{Addr: opts.ListenAddr, Handler: router}
	go func() {
		webLogger.Info().Str("addr", opts.ListenAddr).Msg("web surface listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			webLogger.Error().Err(err).Msg("web server failed")
		}
	}()

	<-ctx.Done()
	rootLogger.Info().Msg("shutting down")
	_ = server.Shutdown(context.Background())
	if port != nil {
		port.Close()
	}
}
