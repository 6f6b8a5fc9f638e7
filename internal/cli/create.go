package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-escalation/internal/app"
	"github.com/spec-kit/ticket-escalation/internal/domain"
	apperrors "github.com/spec-kit/ticket-escalation/pkg/util"
)

var createOpts struct {
	title       string
	description string
	priority    string
	assignee    string
	createdAt   string
	paying      bool
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a ticket",
	Long: `Create a ticket. Escalation rules run against the given priority, high
priority tickets notify the administrator and paying customers get the
account manager attached.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		priority, ok := domain.ParsePriority(createOpts.priority)
		if !ok {
			return invalidPriority(createOpts.priority)
		}
		createdAt, err := parseCreatedAt(createOpts.createdAt)
		if err != nil {
			return err
		}

		return withContainer(cmd, func(c *app.Container) error {
			if createdAt.IsZero() {
				createdAt = c.Clock.Now()
			}
			id, err := c.Tickets.CreateTicket(cmd.Context(), domain.TicketRequest{
				Title:            createOpts.title,
				Description:      createOpts.description,
				Priority:         priority,
				AssignedTo:       createOpts.assignee,
				CreatedAt:        createdAt,
				IsPayingCustomer: createOpts.paying,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created ticket %d\n", id)
			return nil
		})
	},
}

func init() {
	createCmd.Flags().StringVar(&createOpts.title, "title", "", "ticket title")
	createCmd.Flags().StringVar(&createOpts.description, "description", "", "ticket description")
	createCmd.Flags().StringVarP(&createOpts.priority, "priority", "p", "LOW", "initial priority: LOW, MEDIUM or HIGH")
	createCmd.Flags().StringVarP(&createOpts.assignee, "assign", "a", "", "username to assign")
	createCmd.Flags().StringVar(&createOpts.createdAt, "created-at", "", "creation time, RFC3339 (default now)")
	createCmd.Flags().BoolVar(&createOpts.paying, "paying", false, "ticket belongs to a paying customer")
}

// parseCreatedAt returns the zero time for an empty value.
func parseCreatedAt(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --created-at: %w", err)
	}
	return t, nil
}

func invalidPriority(raw string) error {
	return apperrors.NewInvalidTicket("priority must be one of LOW, MEDIUM, HIGH", map[string]any{"priority": raw})
}
