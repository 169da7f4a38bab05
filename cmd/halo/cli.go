package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/avelius/halo/internal/config"
	"github.com/avelius/halo/internal/errors"
	"github.com/avelius/halo/internal/ops"
	"github.com/avelius/halo/internal/patterns"
	"github.com/avelius/halo/internal/watch"
	"github.com/avelius/halo/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "halo",
		Usage:   "Content-aware overlay engine",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(db, cfg),
			removeCmd(db),
			listCmd(db),
			ingestCmd(db, cfg),
			classifyCmd(cfg),
			keyboardCmd(db),
			minimizeCmd(db),
			moveCmd(db),
			clearCmd(db),
			exportCmd(db),
			interactCmd(db),
			patternsCmd(cfg),
			watchCmd(db, cfg),
			serveCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addCmd creates the add command.
func addCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a bubble (content may be piped via stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Required: true, Usage: "Bubble type: text_paste|toolbelt|pinned|system|quick_action|accumulator|voice|collaboration"},
			&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "Content sample (text_paste, pinned)"},
			&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Usage: "Notification message (system)"},
			&cli.StringFlag{Name: "severity", Usage: "Notification severity: info|warning|error (system)"},
			&cli.StringFlag{Name: "category", Usage: "Content category (toolbelt, quick_action)"},
			&cli.StringFlag{Name: "action", Usage: "Action label (quick_action)"},
			&cli.StringFlag{Name: "pattern", Aliases: []string{"p"}, Usage: "Pattern preset ID (accumulator)"},
			&cli.StringFlag{Name: "session", Usage: "Session name (collaboration)"},
			&cli.IntFlag{Name: "x", Usage: "Initial X position"},
			&cli.IntFlag{Name: "y", Usage: "Initial Y position"},
		},
		Action: func(c *cli.Context) error {
			input := ops.AddInput{
				Type:        c.String("type"),
				Content:     c.String("content"),
				Message:     c.String("message"),
				Severity:    c.String("severity"),
				Category:    c.String("category"),
				ActionLabel: c.String("action"),
				PatternID:   c.String("pattern"),
				SessionName: c.String("session"),
				X:           c.Int("x"),
				Y:           c.Int("y"),
			}

			// Piped content wins over the flag.
			if input.Content == "" && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				input.Content = text
			}

			output, err := ops.Add(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// removeCmd creates the remove command.
func removeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Remove a bubble",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Remove(c.Context, db, ops.RemoveInput{
				ID: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List bubbles in ranked order (visible only by default)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Filter by bubble type"},
			&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Include hidden bubbles"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, db, ops.ListInput{
				Type: c.String("type"),
				All:  c.Bool("all"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// ingestCmd creates the ingest command.
func ingestCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "Feed a content sample into the overlay (argument or stdin)",
		ArgsUsage: "[content]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Value: "cli", Usage: "Sample source label"},
			&cli.BoolFlag{Name: "bubble", Aliases: []string{"b"}, Usage: "Also create a text_paste bubble for the sample"},
		},
		Action: func(c *cli.Context) error {
			content := c.Args().First()
			if content == "" && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				content = text
			}

			output, err := ops.Ingest(c.Context, db, cfg, ops.IngestInput{
				Content:      content,
				Source:       c.String("source"),
				CreateBubble: c.Bool("bubble"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// classifyCmd creates the classify command.
func classifyCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Classify a content sample without touching overlay state",
		ArgsUsage: "[content]",
		Action: func(c *cli.Context) error {
			content := c.Args().First()
			if content == "" && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				content = text
			}

			output, err := ops.Classify(cfg, ops.ClassifyInput{Content: content})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// keyboardCmd creates the keyboard command.
func keyboardCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "keyboard",
		Usage:     "Set keyboard visibility and re-derive bubble states",
		ArgsUsage: "<show|hide>",
		Action: func(c *cli.Context) error {
			var visible bool
			switch c.Args().First() {
			case "show":
				visible = true
			case "hide":
				visible = false
			default:
				return outputError(errors.NewInvalidRequest("argument must be 'show' or 'hide'"))
			}

			output, err := ops.Keyboard(c.Context, db, ops.KeyboardInput{Visible: visible})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// minimizeCmd creates the minimize command.
func minimizeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "minimize",
		Usage:     "Toggle a bubble between minimized and full size",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Minimize(c.Context, db, ops.MinimizeInput{
				ID: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// moveCmd creates the move command.
func moveCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "move",
		Usage:     "Reposition a bubble",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "x", Required: true, Usage: "New X position"},
			&cli.IntFlag{Name: "y", Required: true, Usage: "New Y position"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Move(c.Context, db, ops.MoveInput{
				ID: c.Args().First(),
				X:  c.Int("x"),
				Y:  c.Int("y"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// clearCmd creates the clear command.
func clearCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Remove all bubbles, or all bubbles of one type",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Only clear this bubble type"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Clear(c.Context, db, ops.ClearInput{
				Type: c.String("type"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export an accumulator bubble's collected items",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "reset", Aliases: []string{"r"}, Usage: "Empty the accumulator after exporting"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, db, ops.ExportInput{
				ID:    c.Args().First(),
				Reset: c.Bool("reset"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// interactCmd creates the interact command.
func interactCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "interact",
		Usage:     "Record an interaction with a bubble (resets its auto-hide clock)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "collecting", Usage: "Start or pause collection (accumulator only)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.InteractInput{ID: c.Args().First()}
			if c.IsSet("collecting") {
				collecting := c.Bool("collecting")
				input.Collecting = &collecting
			}

			output, err := ops.Interact(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// patternsCmd creates the patterns command.
func patternsCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "patterns",
		Usage: "List accumulator pattern presets (built-in plus user-defined)",
		Action: func(c *cli.Context) error {
			list, err := patterns.Load(cfg.BaseDir)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{
				"patterns": list,
				"total":    len(list),
			})
		},
	}
}

// watchCmd creates the watch command.
func watchCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Tail a capture spool file and ingest appended lines",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return outputError(errors.NewInvalidRequest("spool file path is required"))
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := watch.New(db, cfg, path)
			w.OnIngest = func(line string, out *ops.IngestOutput) {
				fmt.Printf("[%s] %s\n", out.Category, line)
			}

			fmt.Fprintf(os.Stderr, "watching %s (ctrl-c to stop)\n", path)
			if err := w.Run(ctx); err != nil && err != context.Canceled {
				return outputError(err)
			}
			return nil
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Value: 8484, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, Version, c.String("bind"), c.Int("port"))
			if err := web.Run(srv); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if haloErr, ok := err.(*errors.HaloError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", haloErr.Code, haloErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
