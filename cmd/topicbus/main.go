// Package main is the entry point for the topicbus demo host.
//
// It loads configuration, builds the application, registers a number of
// logging listeners on one topic, publishes a single JSON payload to it and
// prints the publish report as JSON.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/dshills/topicbus/internal/app"
	"github.com/dshills/topicbus/internal/event"
	"github.com/dshills/topicbus/internal/event/topic"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK       = 0
	exitSetup    = 1
	exitFailures = 2
)

// errDemoListener is returned by the listener selected with -fail.
var errDemoListener = errors.New("demo listener failure")

type cliOptions struct {
	app       app.Options
	topic     string
	payload   string
	listeners int
	fail      int
	pretty    bool
	version   bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitSetup
	}

	if opts.version {
		fmt.Fprintf(stdout, "topicbus %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return exitOK
	}

	payload, err := event.ParsePayload([]byte(opts.payload))
	if err != nil {
		fmt.Fprintf(stderr, "Error: -payload: %v\n", err)
		return exitSetup
	}

	var (
		bus    event.Bus
		logger *zap.Logger
	)
	application := app.New(opts.app, fx.Populate(&bus, &logger))
	if err := application.Err(); err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return exitSetup
	}

	ctx := context.Background()
	if err := application.Start(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: failed to start: %v\n", err)
		return exitSetup
	}
	defer func() {
		if err := application.Stop(ctx); err != nil {
			fmt.Fprintf(stderr, "Error: failed to stop: %v\n", err)
		}
		_ = logger.Sync()
	}()

	t := topic.Topic(opts.topic)
	for i := 0; i < opts.listeners; i++ {
		if _, err := bus.Subscribe(t, demoListener(logger, i, i == opts.fail), event.WithName(fmt.Sprintf("listener-%d", i))); err != nil {
			fmt.Fprintf(stderr, "Error: subscribe: %v\n", err)
			return exitSetup
		}
	}

	report := event.NewPublisher(bus, "topicbus-cli").Publish(ctx, t, payload)

	out, err := renderReport(report)
	if err != nil {
		fmt.Fprintf(stderr, "Error: render report: %v\n", err)
		return exitSetup
	}
	if opts.pretty {
		out = pretty.Pretty(out)
		if isTerminal(stdout) {
			out = pretty.Color(out, nil)
		}
	}
	fmt.Fprintln(stdout, string(out))

	if !report.OK() {
		return exitFailures
	}
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions

	fs := flag.NewFlagSet("topicbus", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.app.ConfigPath, "config", "", "Path to configuration file (.toml, .yaml)")
	fs.StringVar(&opts.app.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.app.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.topic, "topic", "demo.event", "Topic to publish to")
	fs.StringVar(&opts.payload, "payload", "{}", "JSON object to publish")
	fs.IntVar(&opts.listeners, "listeners", 3, "Number of demo listeners to register")
	fs.IntVar(&opts.fail, "fail", -1, "Index of a listener that returns an error")
	fs.BoolVar(&opts.pretty, "pretty", false, "Pretty-print the report")
	fs.BoolVar(&opts.version, "version", false, "Show version information")
	fs.BoolVar(&opts.version, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "topicbus - in-process topic event bus demo\n\n")
		fmt.Fprintf(stderr, "Usage: topicbus [options]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  topicbus -topic orders.created -payload '{\"id\":\"A-1\"}'\n")
		fmt.Fprintf(stderr, "  topicbus -listeners 5 -fail 2 -pretty\n")
		fmt.Fprintf(stderr, "\nExit status is 2 when any listener fails.\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.app.LogLevel != "" && !app.ValidLogLevel(opts.app.LogLevel) {
		return opts, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.app.LogLevel)
	}
	if opts.listeners < 0 {
		return opts, fmt.Errorf("-listeners must not be negative, got %d", opts.listeners)
	}
	if err := topic.Topic(opts.topic).Validate(); err != nil {
		return opts, fmt.Errorf("-topic: %w", err)
	}

	return opts, nil
}

func demoListener(logger *zap.Logger, index int, fail bool) event.ListenerFunc {
	return func(ctx context.Context, e event.Event) error {
		logger.Info("event received",
			zap.Int("listener", index),
			zap.String("topic", e.Topic.String()),
			zap.String("event", e.Metadata.ID),
			zap.Any("payload", map[string]any(e.Payload)),
		)
		if fail {
			return errDemoListener
		}
		return nil
	}
}

// renderReport encodes a publish report as a JSON object.
func renderReport(r event.Report) ([]byte, error) {
	out := []byte(`{}`)
	var err error

	set := func(path string, value any) {
		if err != nil {
			return
		}
		out, err = sjson.SetBytes(out, path, value)
	}

	set("topic", r.Topic.String())
	set("eventId", r.EventID)
	set("ok", r.OK())
	set("delivered", r.Delivered)
	set("declined", r.Declined)
	set("skipped", r.Skipped)
	set("aborted", r.Aborted)
	if r.Interrupted != nil {
		set("interrupted", r.Interrupted.Error())
	}
	set("failures", []any{})
	for i, f := range r.Failures {
		prefix := fmt.Sprintf("failures.%d.", i)
		set(prefix+"subscription", f.SubscriptionID)
		set(prefix+"name", f.Name)
		set(prefix+"index", f.Index)
		set(prefix+"panic", f.IsPanic())
		set(prefix+"error", f.Err.Error())
	}

	return out, err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
