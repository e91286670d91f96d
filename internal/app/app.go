package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/extman/internal/config"
	"github.com/five82/extman/internal/controller"
	"github.com/five82/extman/internal/gateway"
	"github.com/five82/extman/internal/logging"
	"github.com/five82/extman/internal/prefs"
	"github.com/five82/extman/internal/state"
	"github.com/five82/extman/internal/ui"
)

// drainTimeout bounds how long Run waits for in-flight remote calls after
// the UI exits.
const drainTimeout = 3 * time.Second

// closeTimeout bounds how long Close waits for cancelled calls to roll back.
const closeTimeout = time.Second

// Options configure a Session.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses ~/.config/extman/prefs.toml
	Verbose    bool
	// Version is sent as extman/<Version> in the User-Agent header.
	Version string

	// LogToFile sends logs to the configured log_file instead of LogWriter.
	// The TUI sets it because it owns the terminal.
	LogToFile bool
	LogWriter io.Writer

	// Notify receives every resolved mutation.
	Notify func(controller.Outcome)

	// HTTPClient replaces the gateway's client; tests point it at httptest.
	HTTPClient *http.Client
}

// Session holds everything one run of extman needs.
type Session struct {
	Config     config.Config
	Prefs      prefs.Prefs
	PrefsPath  string
	Logger     zerolog.Logger
	Client     *gateway.Client
	Store      *state.Store
	Controller *controller.Controller

	cancel   context.CancelFunc
	closeLog func() error
}

// NewSession loads configuration and builds the gateway, store and
// controller. Remote calls made by the controller run under ctx.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logOpts := logging.Options{
		Level:   cfg.LogLevel,
		Verbose: opts.Verbose,
		Writer:  opts.LogWriter,
	}
	if opts.LogToFile {
		logOpts.File = cfg.LogFile
	}
	logger, closeLog, err := logging.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn().Err(err).Msg("using default preferences")
	}

	clientOpts := []gateway.Option{
		gateway.WithResource(cfg.Resource),
		gateway.WithTimeout(cfg.RequestTimeout),
		gateway.WithLogger(logger),
	}
	if opts.Version != "" {
		clientOpts = append(clientOpts, gateway.WithUserAgent("extman/"+opts.Version))
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, gateway.WithHTTPClient(opts.HTTPClient))
	}
	client, err := gateway.NewClient(cfg.APIURL, clientOpts...)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("init gateway client: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	store := &state.Store{}
	ctl, err := controller.New(ctx, client, store, controller.Options{
		Logger: logger,
		Notify: opts.Notify,
	})
	if err != nil {
		cancel()
		_ = closeLog()
		return nil, fmt.Errorf("init controller: %w", err)
	}

	logger.Debug().
		Str("api_url", cfg.APIURL).
		Str("resource", cfg.Resource).
		Dur("timeout", cfg.RequestTimeout).
		Msg("session ready")

	return &Session{
		Config:     cfg,
		Prefs:      userPrefs,
		PrefsPath:  opts.PrefsPath,
		Logger:     logger,
		Client:     client,
		Store:      store,
		Controller: ctl,
		cancel:     cancel,
		closeLog:   closeLog,
	}, nil
}

// Close cancels remote calls still in flight, gives their rollbacks up to
// closeTimeout to finish and then releases the log file. Calling it again is
// a no-op.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		if s.Controller != nil {
			ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
			if err := s.Controller.Wait(ctx); err != nil {
				s.Logger.Warn().Int("pending", s.Controller.Pending()).Msg("closing with unresolved changes")
			}
			cancel()
		}
	}
	if s.closeLog == nil {
		return nil
	}
	closeLog := s.closeLog
	s.closeLog = nil
	return closeLog()
}

// Run boots the extman TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make(chan controller.Outcome, 32)
	uiDone := make(chan struct{})
	opts.LogToFile = true
	opts.Notify = func(o controller.Outcome) {
		select {
		case outcomes <- o:
		case <-uiDone:
		case <-ctx.Done():
		}
	}

	session, err := NewSession(ctx, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	session.Logger.Info().Str("api_url", session.Config.APIURL).Msg("starting ui")

	runErr := ui.Run(ctx, ui.Options{
		Context:    ctx,
		Controller: session.Controller,
		Outcomes:   outcomes,
		ThemeName:  session.Prefs.Theme,
		PrefsPath:  opts.PrefsPath,
		Logger:     session.Logger,
	})
	close(uiDone)

	// Give queued remote calls a chance to land before their context ends.
	drainCtx, drainCancel := context.WithTimeout(ctx, drainTimeout)
	defer drainCancel()
	if err := session.Controller.Wait(drainCtx); err != nil && !errors.Is(err, context.Canceled) {
		session.Logger.Warn().Err(err).Int("pending", session.Controller.Pending()).Msg("exiting with unconfirmed changes")
	}

	if runErr != nil {
		return fmt.Errorf("run ui: %w", runErr)
	}
	return nil
}
