// Package cmd implements the visionlab CLI commands.
//
// Each command wraps one workflow against the cloud vision services: image
// generation and chat against an OpenAI deployment, face detection and OCR
// against an AI services resource, and classifier training, upload, and
// prediction against a Custom Vision project.
package cmd

import (
	"context"
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/orchardai/visionlab/internal/config"
	"github.com/orchardai/visionlab/internal/observability"
)

// versionInfo is populated by the build via SetVersionInfo.
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "HEAD",
	BuildDate: "unknown",
}

// SetVersionInfo records build metadata shown by the version command.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate)
}

var (
	flagVerbose  bool
	flagLogLevel string

	// cfg is loaded once per invocation before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "visionlab",
	Short: "Cloud vision workflows from the command line",
	Long: `visionlab drives cloud AI vision services from the command line.

Commands cover the full lab workflow: generating and discussing images with
an OpenAI deployment, detecting faces, reading text, and building a Custom
Vision model (upload labeled images, train, watch the job, classify, detect).

Credentials come from the environment or a visionlab.yaml file; run any
command without them to see which settings it needs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		observability.InitCLILogger(flagLogLevel, flagVerbose)

		loaded, err := config.Load(cmd.Context())
		if err != nil {
			observability.CLILogger.Error("Failed to load configuration", zap.Error(err))
			return exitError(foundry.ExitInvalidArgument, "Invalid configuration", err)
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug|info|warn|error)")
}

// Execute runs the CLI and returns the error of the selected command.
func Execute(ctx context.Context) error {
	defer observability.Sync()
	return rootCmd.ExecuteContext(ctx)
}
