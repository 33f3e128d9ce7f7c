package main

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/slashdevops/fingerprint"
	"github.com/slashdevops/fingerprint/host/browser"
	"github.com/slashdevops/fingerprint/host/native"
	"github.com/slashdevops/fingerprint/host/static"
	"github.com/slashdevops/fingerprint/internal/config"
	"github.com/slashdevops/fingerprint/transport"
)

// hostFlags registers the flags shared by collect and validate.
func hostFlags(fs *pflag.FlagSet) {
	fs.String("host", "", "Host adapter: static, native or browser")
	fs.String("profile", "", "Device profile for the static host (YAML or JSON)")
	fs.String("browser-url", "", "DevTools URL of a running browser; empty launches one")
	fs.Bool("headless", true, "Launch the browser without a window")
	fs.String("salt", "", "Custom salt for application-specific IDs")
	fs.Duration("timeout", 0, "Per-probe timeout, e.g. 2s")
	fs.StringSlice("probes", nil, "Run only these probes")
	fs.StringSlice("skip", nil, "Skip these probes")
}

// override copies explicitly set flags over the loaded configuration.
func (a *app) override(fs *pflag.FlagSet) {
	str := func(name string, dst *string) {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}
	str("host", &a.cfg.Host.Kind)
	str("profile", &a.cfg.Host.Profile)
	str("browser-url", &a.cfg.Host.Browser.ControlURL)
	str("salt", &a.cfg.Collector.Salt)
	str("listen", &a.cfg.Server.Listen)
	str("nats", &a.cfg.Server.NATSURL)
	str("subject", &a.cfg.Server.Subject)

	if fs.Changed("headless") {
		a.cfg.Host.Browser.Headless, _ = fs.GetBool("headless")
	}
	if fs.Changed("timeout") {
		a.cfg.Collector.ProbeTimeout, _ = fs.GetDuration("timeout")
	}
	if fs.Changed("probes") {
		a.cfg.Collector.Probes, _ = fs.GetStringSlice("probes")
	}
	if fs.Changed("skip") {
		a.cfg.Collector.SkipProbes, _ = fs.GetStringSlice("skip")
	}
	if fs.Changed("submit") {
		target, _ := fs.GetString("submit")
		a.cfg.Sink = sinkFor(target, a.cfg.Sink.Subject)
	}
}

// sinkFor picks the carrier from the target's scheme.
func sinkFor(target, subject string) config.SinkConfig {
	switch {
	case target == "":
		return config.SinkConfig{Kind: config.SinkNone}
	case strings.HasPrefix(target, "nats://"), strings.HasPrefix(target, "tls://"):
		return config.SinkConfig{Kind: config.SinkNATS, URL: target, Subject: subject}
	default:
		return config.SinkConfig{Kind: config.SinkHTTP, URL: target}
	}
}

func (a *app) collectCmd() *cobra.Command {
	var jsonOutput, diagnostics bool

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Run every probe and print the identifier",
		Example: `  fingerprint collect --host native
  fingerprint collect --host static --profile device.yaml --json
  fingerprint collect --host browser --diagnostics
  fingerprint collect --skip fonts,audio --salt my-app
  fingerprint collect --submit http://127.0.0.1:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.override(cmd.Flags())
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			host, closeHost, err := a.openHost(cmd.Context())
			if err != nil {
				return err
			}
			defer closeHost()

			collector := a.newCollector(host)
			rec, err := collector.Collect(cmd.Context())
			if err != nil {
				return err
			}

			var ack *transport.Ack
			if a.cfg.Sink.Kind != config.SinkNone {
				sink, closeSink, err := a.openSink()
				if err != nil {
					return err
				}
				defer closeSink()

				if ack, err = submitRecord(cmd.Context(), sink, rec); err != nil {
					return err
				}
			}

			if jsonOutput {
				output := map[string]any{
					"id":        rec.Identifier(),
					"sessionId": rec.SessionID(),
					"record":    rec,
				}
				if diagnostics {
					output["diagnostics"] = formatDiagnostics(collector.Diagnostics())
				}
				if ack != nil {
					output["ack"] = ack
				}
				printJSON(a.out, output)
				return nil
			}

			fmt.Fprintln(a.out, rec.Identifier())
			if ack != nil {
				fmt.Fprintf(a.errOut, "submitted: %s %s\n", ack.Status, ack.Message)
			}
			if diagnostics {
				a.printDiagnostics(collector.Diagnostics())
			}

			return nil
		},
	}

	hostFlags(cmd.Flags())
	cmd.Flags().String("submit", "", "Submit the record to an HTTP endpoint or a nats:// server")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the record as JSON")
	cmd.Flags().BoolVar(&diagnostics, "diagnostics", false, "Show which probes settled, failed or timed out")

	return cmd
}

func (a *app) validateCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "validate <id>",
		Short: "Check an identifier against a fresh collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.override(cmd.Flags())
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			host, closeHost, err := a.openHost(cmd.Context())
			if err != nil {
				return err
			}
			defer closeHost()

			return a.handleValidate(cmd.Context(), a.newCollector(host), args[0], jsonOutput)
		},
	}

	hostFlags(cmd.Flags())
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the result as JSON")

	return cmd
}

// openHost builds the configured host adapter and its release function.
func (a *app) openHost(ctx context.Context) (fingerprint.Host, func(), error) {
	noop := func() {}

	switch a.cfg.Host.Kind {
	case config.HostStatic:
		profile := static.Desktop()
		if a.cfg.Host.Profile != "" {
			var err error
			if profile, err = static.Load(a.cfg.Host.Profile); err != nil {
				return nil, noop, err
			}
		}

		h, err := static.New(profile)
		if err != nil {
			return nil, noop, err
		}

		return h, noop, nil

	case config.HostBrowser:
		b := a.cfg.Host.Browser
		h, err := browser.Open(ctx, browser.Config{
			ControlURL: b.ControlURL,
			Bin:        b.Bin,
			Headless:   b.Headless,
			PageURL:    b.PageURL,
		})
		if err != nil {
			return nil, noop, err
		}
		h.WithLogger(&a.logger)

		return h, func() {
			if err := h.Close(); err != nil {
				a.logger.Warn().Err(err).Msg("closing browser")
			}
		}, nil

	default:
		h := native.New().WithLogger(&a.logger)
		if a.cfg.Host.StorageDir != "" {
			h.WithStorageDir(a.cfg.Host.StorageDir)
		}

		return h, noop, nil
	}
}

func (a *app) newCollector(host fingerprint.Host) *fingerprint.Collector {
	c := fingerprint.New(host).
		WithLogger(&a.logger).
		WithProbeTimeout(a.cfg.Collector.ProbeTimeout)

	if a.cfg.Collector.Salt != "" {
		c.WithSalt(a.cfg.Collector.Salt)
	}
	if len(a.cfg.Collector.Probes) > 0 {
		c.WithProbes(a.cfg.Collector.Probes...)
	}
	if len(a.cfg.Collector.SkipProbes) > 0 {
		c.WithoutProbes(a.cfg.Collector.SkipProbes...)
	}

	return c
}

// openSink connects the configured sink and returns its release function.
func (a *app) openSink() (transport.Sink, func(), error) {
	switch a.cfg.Sink.Kind {
	case config.SinkNATS:
		nc, err := nats.Connect(a.cfg.Sink.URL, nats.Name(applicationName), nats.Timeout(5*time.Second))
		if err != nil {
			return nil, func() {}, fmt.Errorf("failed to connect to NATS: %w", err)
		}

		return transport.NewNATSSink(nc, a.cfg.Sink.Subject).WithLogger(&a.logger), nc.Close, nil
	default:
		return transport.NewHTTPSink(a.cfg.Sink.URL).WithLogger(&a.logger), func() {}, nil
	}
}

func submitRecord(ctx context.Context, sink transport.Sink, rec *fingerprint.Record) (*transport.Ack, error) {
	ack, err := sink.Submit(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("submitting record: %w", err)
	}

	return ack, nil
}

func (a *app) handleValidate(ctx context.Context, collector *fingerprint.Collector, expectedID string, jsonOut bool) error {
	valid, err := collector.Validate(ctx, expectedID)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if !valid {
		a.exitCode = 1
	}

	if jsonOut {
		printJSON(a.out, map[string]any{
			"valid":      valid,
			"expectedID": expectedID,
		})
		return nil
	}

	if valid {
		fmt.Fprintln(a.out, "valid: fingerprint matches")
	} else {
		fmt.Fprintln(a.out, "invalid: fingerprint does not match")
	}

	return nil
}

func (a *app) printDiagnostics(diag *fingerprint.DiagnosticInfo) {
	if diag == nil {
		fmt.Fprintln(a.errOut, "no diagnostic information available")
		return
	}

	fmt.Fprintln(a.errOut, "\nDiagnostics:")
	fmt.Fprintf(a.errOut, "  Session: %s (%s)\n", diag.SessionID, diag.Duration.Round(time.Millisecond))
	if len(diag.Collected) > 0 {
		fmt.Fprintf(a.errOut, "  Collected: %s\n", strings.Join(diag.Collected, ", "))
	}
	if len(diag.TimedOut) > 0 {
		fmt.Fprintf(a.errOut, "  Timed out: %s\n", strings.Join(diag.TimedOut, ", "))
	}
	if len(diag.Skipped) > 0 {
		fmt.Fprintf(a.errOut, "  Skipped: %s\n", strings.Join(diag.Skipped, ", "))
	}
	if len(diag.Errors) > 0 {
		fmt.Fprintln(a.errOut, "  Errors:")
		for _, name := range slices.Sorted(maps.Keys(diag.Errors)) {
			fmt.Fprintf(a.errOut, "    %s: %v\n", name, diag.Errors[name])
		}
	}
	if diag.DegradedID {
		fmt.Fprintln(a.errOut, "  Identifier is degraded and will not match later sessions")
	}
}

func formatDiagnostics(diag *fingerprint.DiagnosticInfo) map[string]any {
	if diag == nil {
		return nil
	}

	result := map[string]any{
		"sessionId":  diag.SessionID,
		"collected":  diag.Collected,
		"durationMs": diag.Duration.Milliseconds(),
		"degradedId": diag.DegradedID,
	}
	if len(diag.TimedOut) > 0 {
		result["timedOut"] = diag.TimedOut
	}
	if len(diag.Skipped) > 0 {
		result["skipped"] = diag.Skipped
	}
	if len(diag.Errors) > 0 {
		errors := make(map[string]string, len(diag.Errors))
		for probe, err := range diag.Errors {
			errors[probe] = err.Error()
		}
		result["errors"] = errors
	}

	return result
}
