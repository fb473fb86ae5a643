package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jandubois/check-oceanstor/internal/check"
	"github.com/jandubois/check-oceanstor/internal/config"
	"github.com/jandubois/check-oceanstor/internal/guard"
	"github.com/jandubois/check-oceanstor/internal/oceanstor"
	"github.com/jandubois/check-oceanstor/internal/probe"
	"github.com/jandubois/check-oceanstor/internal/report"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X github.com/jandubois/check-oceanstor/cmd.Version=..."
var Version = "dev"

// UsageExitCode is returned for invocations that never reach the check.
// It is outside the range of monitoring states.
const UsageExitCode = 64

var rootCmd = &cobra.Command{
	Use:   check.Name,
	Short: "Check the overall health of an OceanStor storage array",
	Long: `Logs into the OceanStor DeviceManager REST API, reads the health of every
enclosure, controller, disk, ethernet port and FC port, and prints a single
Nagios/Icinga compatible status line.

Exit codes: 0 OK, 2 CRITICAL, 3 UNKNOWN, 64 usage error.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCheck,
}

// Execute runs the command. Any returned error is a usage error; check
// results terminate the process from within.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	addFlags(rootCmd)
}

func addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("host", "H", "", "IP or DNS address (required)")
	flags.StringP("system", "s", "", "System ID of the OceanStor (required)")
	flags.StringP("username", "u", "", "Username to log in with (required)")
	flags.StringP("password", "p", "", "Password (required, or "+config.PasswordEnv+" env var)")
	flags.IntP("timeout", "t", config.DefaultTimeoutSeconds, "Timeout in seconds")
	flags.BoolP("full", "f", false, "Report all components (OK, CRITICAL, UNKNOWN)")
	flags.Int("port", oceanstor.DefaultPort, "DeviceManager REST port")
	flags.Bool("verify-tls", false, "Verify the array's TLS certificate")
	flags.Bool("perfdata", false, "Append component counts as performance data")
	flags.StringP("config", "c", "", "YAML file with connection settings")
	flags.BoolP("version", "v", false, "Print version and exit")
	flags.Bool("describe", false, "Output the probe description as JSON")

	cmd.PersistentFlags().String("log-level", "warn", "Log level on stderr (debug, info, warn, error)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetBool("version"); v {
		fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", check.Name, Version)
		return nil
	}
	if describe, _ := cmd.Flags().GetBool("describe"); describe {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(check.GetDescription(Version))
	}

	if err := setupLogging(cmd); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	reporter := report.New(cfg.PerfData, report.WithOutput(cmd.OutOrStdout()))

	client, err := oceanstor.NewClient(cfg.Client())
	if err != nil {
		reporter.Report(&probe.Result{
			Status:  probe.StatusUnknown,
			Message: fmt.Sprintf("%s: %v", probe.StatusUnknown, err),
		})
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Debug("starting check", "host", cfg.Host, "system_id", cfg.SystemID, "timeout", cfg.Timeout())
	result := guard.Run(ctx, cfg.Timeout(), check.Body(client, check.Options{FullOutput: cfg.FullOutput}))

	reporter.Report(result)
	return nil
}

// loadConfig merges the config file, the environment and flags, in
// increasing order of precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	cfg := &config.Config{}
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, &config.UsageError{Msg: err.Error()}
		}
		cfg = loaded
	}

	if cfg.Password == "" {
		cfg.Password = os.Getenv(config.PasswordEnv)
	}

	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Changed("system") {
		cfg.SystemID, _ = flags.GetString("system")
	}
	if flags.Changed("username") {
		cfg.Username, _ = flags.GetString("username")
	}
	if flags.Changed("password") {
		cfg.Password, _ = flags.GetString("password")
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds, _ = flags.GetInt("timeout")
		if cfg.TimeoutSeconds == 0 {
			return nil, &config.UsageError{Msg: "timeout must be positive, got 0"}
		}
	}
	if flags.Changed("full") {
		cfg.FullOutput, _ = flags.GetBool("full")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("verify-tls") {
		cfg.VerifyTLS, _ = flags.GetBool("verify-tls")
	}
	if flags.Changed("perfdata") {
		cfg.PerfData, _ = flags.GetBool("perfdata")
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	config.Normalize(cfg)
	return cfg, nil
}

func setupLogging(cmd *cobra.Command) error {
	name, _ := cmd.Flags().GetString("log-level")

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return &config.UsageError{Msg: fmt.Sprintf("invalid log level %q", name)}
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}
