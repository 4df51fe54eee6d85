package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tailored-agentic-units/assistant/console"
	"github.com/tailored-agentic-units/assistant/journal"
	"github.com/tailored-agentic-units/assistant/server"
	"github.com/tailored-agentic-units/assistant/vision"
)

func newApp(stdin io.Reader, stdout io.Writer) *cli.App {
	return &cli.App{
		Name:      "assistant",
		Usage:     "chat assistant with weather, schedule and video tools",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "JSON or TOML config file"},
			&cli.StringFlag{Name: "schedule", Usage: "schedule file (overrides config)"},
			&cli.StringFlag{Name: "journal", Usage: "turn journal database (overrides config)"},
			&cli.StringFlag{Name: "memory", Usage: "memory notes directory (overrides config)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "text or json"},
		},
		Action: runChat,
		Commands: []*cli.Command{
			{
				Name:   "chat",
				Usage:  "interactive chat (default)",
				Action: runChat,
			},
			{
				Name:  "ask",
				Usage: "answer a single prompt",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "prompt", Aliases: []string{"p"}, Required: true},
					&cli.StringFlag{Name: "remote", Usage: "base URL of a running serve instance"},
					&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "print the tool call"},
				},
				Action: runAsk,
			},
			{
				Name:  "video",
				Usage: "describe a video and ask questions frame by frame",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "video", Usage: "video file (overrides config)"},
					&cli.IntFlag{Name: "interval", Usage: "seconds between frames (overrides config)"},
					&cli.BoolFlag{Name: "keep-frames", Usage: "leave extracted frames in the work directory"},
				},
				Action: runVideo,
			},
			{
				Name:  "serve",
				Usage: "serve the Ask procedure over HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen address (overrides config)"},
				},
				Action: runServe,
			},
			{
				Name:  "history",
				Usage: "list recent turns from the journal",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20},
				},
				Action: runHistory,
			},
		},
	}
}

func runChat(c *cli.Context) error {
	rt, err := newRuntime(c, c.App.ErrWriter)
	if err != nil {
		return err
	}
	defer rt.Close()

	handle := func(ctx context.Context, line string) (string, error) {
		result, err := rt.kernel.Handle(ctx, line)
		if err != nil {
			return "", err
		}
		return result.Response, nil
	}

	var opts []console.Option
	if p, err := rt.pipeline(); err == nil {
		opts = append(opts, console.WithVision(p, rt.cfg.Vision.VideoPath))
	} else {
		rt.logger.Warn("video questions disabled", "error", err)
	}

	err = console.New(handle, opts...).Run(c.Context, c.App.Reader, c.App.Writer)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runAsk(c *cli.Context) error {
	prompt := c.String("prompt")

	if remote := c.String("remote"); remote != "" {
		reply, err := server.NewClient(nil, remote).Ask(c.Context, prompt)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, reply)
		return nil
	}

	rt, err := newRuntime(c, c.App.ErrWriter)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := rt.kernel.Handle(c.Context, prompt)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, result.Response)
	if c.Bool("verbose") && result.ToolCall != nil {
		tc := result.ToolCall
		fmt.Fprintf(c.App.Writer, "\nTool: %s(%s)\n", tc.Name, tc.Arguments)
		fmt.Fprintf(c.App.Writer, "  -> %s\n", tc.Result)
	}
	return nil
}

func runVideo(c *cli.Context) error {
	rt, err := newRuntime(c, c.App.ErrWriter)
	if err != nil {
		return err
	}
	defer rt.Close()

	if v := c.String("video"); v != "" {
		rt.cfg.Vision.VideoPath = v
	}
	if n := c.Int("interval"); n > 0 {
		rt.cfg.Vision.Interval = n
	}

	p, err := rt.pipeline()
	if err != nil {
		return err
	}

	out := c.App.Writer
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(out, "\n%s\n[Interactive Vision Agent]\n- video: %s\n- interval: %ds\n%s\n",
		rule, rt.cfg.Vision.VideoPath, rt.cfg.Vision.Interval, rule)

	err = p.Interactive(c.Context, rt.cfg.Vision.VideoPath, c.App.Reader, out)
	if !c.Bool("keep-frames") {
		if cerr := vision.Cleanup(rt.cfg.Vision.WorkDir); cerr != nil {
			rt.logger.Warn("failed to remove frames", "error", cerr)
		}
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runServe(c *cli.Context) error {
	rt, err := newRuntime(c, c.App.ErrWriter)
	if err != nil {
		return err
	}
	defer rt.Close()

	addr := rt.cfg.Server.Addr
	if v := c.String("addr"); v != "" {
		addr = v
	}

	srv := server.New(func(ctx context.Context, prompt string) (string, error) {
		result, err := rt.kernel.Handle(ctx, prompt)
		if err != nil {
			return "", err
		}
		return result.Response, nil
	}, server.WithObserver(rt.observer))

	rt.logger.Info("serving", "addr", addr, "procedure", server.AskProcedure)
	return srv.ListenAndServe(c.Context, addr)
}

func runHistory(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if !cfg.Journal.Enabled() {
		return errors.New("journal is disabled: set journal.path or --journal")
	}

	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer j.Close()

	turns, err := j.Recent(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}

	out := c.App.Writer
	if len(turns) == 0 {
		fmt.Fprintln(out, "No turns recorded.")
		return nil
	}
	for _, t := range turns {
		fmt.Fprintf(out, "%s  You: %s\n", t.Created().Format("2006-01-02 15:04:05"), t.Input)
		if t.ToolName != "" {
			fmt.Fprintf(out, "  tool: %s(%s) -> %s\n", t.ToolName, t.ToolArguments, t.ToolResult)
		}
		if t.Error != "" {
			fmt.Fprintf(out, "  Error: %s\n", t.Error)
		} else {
			fmt.Fprintf(out, "  AI: %s\n", t.Reply)
		}
	}
	return nil
}
