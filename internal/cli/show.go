package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-escalation/internal/app"
	"github.com/spec-kit/ticket-escalation/internal/domain"
)

var showCmd = &cobra.Command{
	Use:   "show <ticket-id>",
	Short: "Print a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTicketID(args[0])
		if err != nil {
			return err
		}
		return withContainer(cmd, func(c *app.Container) error {
			ticket, err := c.Tickets.GetTicket(cmd.Context(), id)
			if err != nil {
				return err
			}
			printTicket(cmd.OutOrStdout(), ticket)
			return nil
		})
	},
}

func printTicket(w io.Writer, t *domain.Ticket) {
	fmt.Fprintf(w, "Ticket %d\n", t.ID)
	fmt.Fprintf(w, "  Title:           %s\n", t.Title)
	fmt.Fprintf(w, "  Priority:        %s\n", t.Priority)
	fmt.Fprintf(w, "  Price:           $%d\n", t.PriceDollars)
	fmt.Fprintf(w, "  Assigned to:     %s\n", usernameOr(t.AssignedUser, "(unassigned)"))
	fmt.Fprintf(w, "  Account manager: %s\n", usernameOr(t.AccountManager, "(none)"))
	fmt.Fprintf(w, "  Created:         %s\n", t.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "  Description:\n    %s\n", t.Description)
}

func usernameOr(u *domain.User, fallback string) string {
	if u == nil {
		return fallback
	}
	return u.Username
}
