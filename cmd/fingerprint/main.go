package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/slashdevops/fingerprint/internal/config"
	"github.com/slashdevops/fingerprint/internal/version"
)

const applicationName = "fingerprint"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code. A
// failure is printed to stdout as {"error": "..."}.
func run(args []string, stdout, stderr io.Writer) int {
	a := &app{out: stdout, errOut: stderr}

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		a.logError().Err(err).Msg("command failed")
		printJSON(stdout, map[string]string{"error": err.Error()})
		return 1
	}

	return a.exitCode
}

// app carries the loaded configuration and output streams through the
// commands.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	out      io.Writer
	errOut   io.Writer
	exitCode int

	configPath string
	logLevel   string
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   applicationName,
		Short: "Collect device signals and derive a stable fingerprint identifier",
		Long: `fingerprint runs a fixed set of independent probes against a host
environment, records every signal, and hashes the stable subset into an
8 character identifier that stays the same across sessions on one device.

Hosts:
  static   a YAML or JSON device profile (deterministic, for replays)
  native   the local operating system
  browser  a real browser page driven over the DevTools protocol`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error, disabled")

	root.AddCommand(a.collectCmd(), a.validateCmd(), a.serveCmd(), a.versionCmd())

	return root
}

// load reads the configuration and builds the logger before any command
// runs.
func (a *app) load(*cobra.Command, []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger.With().Str("app", applicationName).Logger()

	return nil
}

func (a *app) versionCmd() *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprint(a.out, versionString(long))
		},
	}
	cmd.Flags().BoolVar(&long, "long", false, "Show detailed version information")

	return cmd
}

func versionString(long bool) string {
	ver := version.Version
	commit := version.GitCommit
	if ver == "0.0.0" {
		if info, ok := debug.ReadBuildInfo(); ok {
			ver = info.Main.Version
			if commit == "" {
				commit = info.Main.Sum
			}
		}
	}

	if !long {
		return fmt.Sprintf("%s version: %s\n", applicationName, ver)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s version: %s, ", applicationName, ver)
	fmt.Fprintf(&sb, "Build date: %s, ", version.BuildDate)
	fmt.Fprintf(&sb, "Build user: %s, ", version.BuildUser)
	fmt.Fprintf(&sb, "Git commit: %s, ", commit)
	fmt.Fprintf(&sb, "Git branch: %s, ", version.GitBranch)
	fmt.Fprintf(&sb, "Go version: %s\n", version.GoVersion)

	return sb.String()
}

func (a *app) logError() *zerolog.Event {
	if a.cfg == nil {
		return nil
	}

	return a.logger.Error()
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(w, "{\"error\": %q}\n", err.Error())
	}
}
