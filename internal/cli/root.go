// Package cli implements ticketctl, an operator tool for creating,
// reassigning and inspecting tickets and for dry-running escalation rules.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-escalation/internal/app"
	"github.com/spec-kit/ticket-escalation/internal/config"
	"github.com/spec-kit/ticket-escalation/internal/observability"
)

var (
	cfg       *config.Config
	logger    *zap.Logger
	rulesFile string
	verbose   bool
	version   = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "ticketctl",
	Short: "Ticket escalation operator tool",
	Long: `ticketctl creates and reassigns tickets against the ticket database
and previews how the escalation rules would treat a ticket.

Settings come from the same environment variables as the API server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if rulesFile != "" {
			file, err := config.LoadRulesFile(rulesFile)
			if err != nil {
				return err
			}
			if file.AgeThreshold > 0 {
				cfg.Escalation.AgeThreshold = file.AgeThreshold
			}
			if len(file.Keywords) > 0 {
				cfg.Escalation.Keywords = file.Keywords
			}
		}

		logger = zap.NewNop()
		if verbose {
			logger, err = observability.NewLogger(cfg.Logger)
			if err != nil {
				return fmt.Errorf("failed to init logger: %w", err)
			}
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ticketctl %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "escalation rules YAML file (overrides ESCALATION_RULES_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write structured logs to stdout")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(escalateCmd)
	rootCmd.AddCommand(versionCmd)
}

func SetVersion(v string) {
	version = v
}

func Execute() error {
	return rootCmd.Execute()
}

func Root() *cobra.Command {
	return rootCmd
}

// withContainer connects to storage for the duration of fn.
func withContainer(cmd *cobra.Command, fn func(*app.Container) error) error {
	container, err := app.Build(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer container.Close()
	return fn(container)
}
