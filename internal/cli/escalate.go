package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-escalation/internal/app"
	"github.com/spec-kit/ticket-escalation/internal/clock"
	"github.com/spec-kit/ticket-escalation/internal/domain"
	"github.com/spec-kit/ticket-escalation/internal/service"
)

var escalateOpts struct {
	title     string
	priority  string
	createdAt string
	at        string
	paying    bool
}

var escalateCmd = &cobra.Command{
	Use:   "escalate",
	Short: "Preview escalation without touching storage",
	Long: `Run the escalation rules for a hypothetical ticket and print the
resulting priority, the rule that fired and the price. Nothing is stored
and no email is sent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		priority, ok := domain.ParsePriority(escalateOpts.priority)
		if !ok {
			return invalidPriority(escalateOpts.priority)
		}

		clk := clock.Real()
		if escalateOpts.at != "" {
			at, err := time.Parse(time.RFC3339, escalateOpts.at)
			if err != nil {
				return fmt.Errorf("invalid --at: %w", err)
			}
			clk = clock.Fake(at)
		}
		createdAt, err := parseCreatedAt(escalateOpts.createdAt)
		if err != nil {
			return err
		}
		if createdAt.IsZero() {
			createdAt = clk.Now()
		}

		engine := app.NewEngine(cfg.Escalation, clk)
		eval := engine.Evaluate(escalateOpts.title, priority, createdAt)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "rules:    %v\n", engine.Rules())
		fmt.Fprintf(out, "initial:  %s\n", priority)
		if eval.Escalated() {
			fmt.Fprintf(out, "result:   %s (escalated by %s)\n", eval.Priority, eval.Rule)
		} else {
			fmt.Fprintf(out, "result:   %s (unchanged)\n", eval.Priority)
		}
		fmt.Fprintf(out, "price:    $%d\n", service.PriceCalculator{}.Calculate(eval.Priority, escalateOpts.paying))
		fmt.Fprintf(out, "notify:   %t\n", eval.Priority == domain.PriorityHigh)
		return nil
	},
}

func init() {
	escalateCmd.Flags().StringVar(&escalateOpts.title, "title", "", "ticket title")
	escalateCmd.Flags().StringVarP(&escalateOpts.priority, "priority", "p", "LOW", "initial priority: LOW, MEDIUM or HIGH")
	escalateCmd.Flags().StringVar(&escalateOpts.createdAt, "created-at", "", "creation time, RFC3339 (default: evaluation time)")
	escalateCmd.Flags().StringVar(&escalateOpts.at, "at", "", "evaluate as if the current time were this RFC3339 instant")
	escalateCmd.Flags().BoolVar(&escalateOpts.paying, "paying", false, "price for a paying customer")
}
