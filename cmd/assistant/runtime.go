package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tailored-agentic-units/assistant/agent"
	"github.com/tailored-agentic-units/assistant/journal"
	"github.com/tailored-agentic-units/assistant/kernel"
	"github.com/tailored-agentic-units/assistant/observability"
	"github.com/tailored-agentic-units/assistant/vision"
)

// runtime bundles what every command needs.
type runtime struct {
	cfg      *kernel.Config
	kernel   *kernel.Kernel
	journal  *journal.Journal
	observer observability.Observer
	logger   *slog.Logger
}

// loadConfig reads --config when given, applies the environment, then the
// global flag overrides.
func loadConfig(c *cli.Context) (*kernel.Config, error) {
	var cfg *kernel.Config
	if path := c.String("config"); path != "" {
		loaded, err := kernel.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		defaults := kernel.DefaultConfig()
		cfg = &defaults
	}

	cfg.ApplyEnv(os.Getenv)

	if v := c.String("schedule"); v != "" {
		cfg.Schedule.Path = v
	}
	if v := c.String("journal"); v != "" {
		cfg.Journal.Path = v
	}
	if v := c.String("memory"); v != "" {
		cfg.Memory.Path = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v := c.String("log-format"); v != "" {
		cfg.Log.Format = v
	}
	return cfg, nil
}

func newRuntime(c *cli.Context, logOut io.Writer) (*runtime, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	observer, logger, err := observability.Setup(cfg.Log, logOut)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	rt := &runtime{cfg: cfg, observer: observer, logger: logger}

	opts := []kernel.Option{kernel.WithObserver(observer)}
	if cfg.Journal.Enabled() {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return nil, err
		}
		rt.journal = j
		opts = append(opts, kernel.WithRecorder(j))
	}

	k, err := kernel.New(cfg, opts...)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to create kernel: %w", err)
	}
	rt.kernel = k

	return rt, nil
}

// pipeline builds the video pipeline on the configured vision agent, falling
// back to the chat agent when none is registered.
func (rt *runtime) pipeline() (*vision.Pipeline, error) {
	reg := rt.kernel.Registry()
	a, err := reg.Get(rt.cfg.Vision.Agent)
	if err != nil {
		if !errors.Is(err, agent.ErrAgentNotFound) {
			return nil, err
		}
		rt.logger.Warn("vision agent not registered, using chat agent", "agent", rt.cfg.Vision.Agent)
		if a, err = reg.Get(agent.ChatAgent); err != nil {
			return nil, err
		}
	}

	extractor := vision.NewExtractor(rt.cfg.Vision, vision.WithExtractorObserver(rt.observer))
	describer := vision.NewDescriber(a,
		vision.WithWorkDir(rt.cfg.Vision.WorkDir),
		vision.WithDescriberObserver(rt.observer),
	)
	return vision.NewPipeline(extractor, describer), nil
}

func (rt *runtime) Close() error {
	if rt.journal != nil {
		return rt.journal.Close()
	}
	return nil
}
