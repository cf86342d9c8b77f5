package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"rayee-server-go/internal/domain/credential"
	"rayee-server-go/internal/domain/describe"
	"rayee-server-go/internal/domain/speech"
	platformconfig "rayee-server-go/internal/platform/config"
	platformerrors "rayee-server-go/internal/platform/errors"
	"rayee-server-go/internal/platform/logging"
	httptransport "rayee-server-go/internal/transport/http"
	httprelay "rayee-server-go/internal/transport/http/relay"
)

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	config      *platformconfig.Config
	configPath  string
	logProvider *logging.Logger
	pool        *credential.Pool
	describer   *describe.Describer
	synthesizer *speech.Synthesizer
}

// Run starts the whole service lifecycle: configuration, dependencies,
// the HTTP server and graceful shutdown.
func Run(ctx context.Context) error {
	state := &appState{}

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
		return err
	}

	config := state.config
	logger := state.logProvider
	if config == nil || logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger not initialised",
		)
	}

	logBootstrapGraph(steps, logger)

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return err
	}

	if err := waitForShutdown(signalCtx, groupCtx, cancel, logger, group); err != nil {
		return err
	}

	logger.InfoTag("Boot", "service stopped")
	logger.Close()
	return nil
}

func logBootstrapGraph(steps []initStep, logger *logging.Logger) {
	if logger == nil {
		return
	}
	for _, step := range steps {
		logger.InfoTag("Boot", step.Title)
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

// InitGraph describes the startup order: configuration first, logging
// next, then the credential pool and the domain components over it.
func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "credential:load",
			Title:     "Load credential pool",
			DependsOn: []string{"logging:init"},
			Kind:      platformerrors.KindConfig,
			Execute:   loadCredentialsStep,
		},
		{
			ID:        "describe:init",
			Title:     "Initialise vision describer",
			DependsOn: []string{"credential:load"},
			Kind:      platformerrors.KindCredential,
			Execute:   initDescriberStep,
		},
		{
			ID:        "speech:init",
			Title:     "Initialise speech synthesizer",
			DependsOn: []string{"logging:init"},
			Kind:      platformerrors.KindSynthesis,
			Execute:   initSpeechStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().Load()
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindConfig, "config:load", "failed to load configuration", err)
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"logging:init",
			"config not loaded",
		)
	}

	logProvider, err := logging.New(logging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init", "failed to initialize logging provider", err)
	}

	state.logProvider = logProvider
	logProvider.InfoTag("Boot", "logging ready [%s] %s", state.config.Log.Level, state.configPath)
	return nil
}

func loadCredentialsStep(_ context.Context, state *appState) error {
	pool, err := credential.Load()
	if err != nil {
		return err
	}
	state.pool = pool
	state.logProvider.InfoTag("Boot", "credential pool loaded with %d key(s)", pool.Len())
	return nil
}

func initDescriberStep(_ context.Context, state *appState) error {
	describer, err := describe.NewDescriber(state.config.Vision, state.pool, state.logProvider)
	if err != nil {
		return err
	}
	state.describer = describer
	state.logProvider.InfoTag("Boot", "vision describer bound to model %s", state.config.Vision.ModelName)
	return nil
}

func initSpeechStep(_ context.Context, state *appState) error {
	synthesizer, err := speech.NewSynthesizer(state.config.TTS, speech.NewEdgeEngine(), state.logProvider)
	if err != nil {
		return err
	}
	state.synthesizer = synthesizer
	return nil
}

func startHTTPServer(
	state *appState,
	g *errgroup.Group,
	groupCtx context.Context,
) (*http.Server, error) {
	config := state.config
	logger := state.logProvider

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config: config,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	engine := httpRouter.Engine

	relayService, err := httprelay.NewService(
		config,
		logger,
		state.describer,
		state.synthesizer,
		state.pool.Len(),
	)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "relay:new-service", "failed to create relay service", err)
	}

	if err := relayService.Register(groupCtx, engine); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "relay:register", "failed to register relay routes", err)
	}

	httpServer := &http.Server{
		Addr:    ":" + strconv.Itoa(config.Server.Port),
		Handler: engine,
	}

	g.Go(func() error {
		logger.InfoTag("HTTP", "server listening on http://localhost:%d", config.Server.Port)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "server shutdown failed: %v", err)
			} else {
				logger.InfoTag("HTTP", "server shut down gracefully")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "server failed: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(
	signalCtx context.Context,
	groupCtx context.Context,
	cancel context.CancelFunc,
	logger *logging.Logger,
	g *errgroup.Group,
) error {
	// A server that fails at startup cancels the group context; without
	// this branch the process would hang until a signal arrives.
	select {
	case <-signalCtx.Done():
		logger.InfoTag("Boot", "received signal %v, cleaning up", context.Cause(signalCtx))
	case <-groupCtx.Done():
		logger.WarnTag("Boot", "a service stopped unexpectedly, cleaning up")
	}

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("Boot", "error during shutdown: %v", err)
			return err
		}
		logger.InfoTag("Boot", "all services stopped")
	case <-time.After(15 * time.Second):
		timeoutErr := errors.New("shutdown timed out")
		logger.ErrorTag("Boot", "shutdown timed out, forcing exit")
		return timeoutErr
	}
	return nil
}
