package service

import "github.com/spec-kit/ticket-escalation/internal/domain"

// Ticket prices in whole dollars.
const (
	PriceFree     = 0
	PriceStandard = 50
	PriceHigh     = 100
)

// PriceCalculator prices a ticket from its final priority and the paying flag.
type PriceCalculator struct{}

// Calculate returns 0 for non-paying customers, 100 for High and 50 otherwise.
func (PriceCalculator) Calculate(priority domain.Priority, isPayingCustomer bool) int {
	if !isPayingCustomer {
		return PriceFree
	}
	if priority == domain.PriorityHigh {
		return PriceHigh
	}
	return PriceStandard
}
