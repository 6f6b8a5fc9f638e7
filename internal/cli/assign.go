package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-escalation/internal/app"
)

var assignCmd = &cobra.Command{
	Use:   "assign <ticket-id> <username>",
	Short: "Reassign a ticket",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTicketID(args[0])
		if err != nil {
			return err
		}
		return withContainer(cmd, func(c *app.Container) error {
			ticket, err := c.Tickets.AssignTicket(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ticket %d assigned to %s\n", ticket.ID, ticket.AssignedUsername())
			return nil
		})
	},
}

func parseTicketID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ticket id %q", raw)
	}
	return id, nil
}
