package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-escalation/internal/api/dto"
	"github.com/spec-kit/ticket-escalation/internal/clock"
	"github.com/spec-kit/ticket-escalation/internal/domain"
	apperrors "github.com/spec-kit/ticket-escalation/pkg/util"
)

// TicketService is the subset of service.TicketService the handler drives.
type TicketService interface {
	CreateTicket(ctx context.Context, req domain.TicketRequest) (int64, error)
	AssignTicket(ctx context.Context, id int64, username string) (*domain.Ticket, error)
	GetTicket(ctx context.Context, id int64) (*domain.Ticket, error)
}

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service TicketService
	clock   clock.Clock
}

// NewTicketsHandler constructs handler. created_at defaults to clk.Now().
func NewTicketsHandler(ticketService TicketService, clk clock.Clock) *TicketsHandler {
	if clk == nil {
		clk = clock.Real()
	}
	return &TicketsHandler{service: ticketService, clock: clk}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	priority, ok := domain.ParsePriority(req.Priority)
	if !ok {
		return apperrors.NewInvalidTicket("priority must be one of LOW, MEDIUM, HIGH", map[string]any{"priority": req.Priority})
	}
	createdAt := h.clock.Now()
	if req.CreatedAt != nil {
		createdAt = *req.CreatedAt
	}

	id, err := h.service.CreateTicket(c.UserContext(), domain.TicketRequest{
		Title:            req.Title,
		Description:      req.Description,
		Priority:         priority,
		AssignedTo:       req.AssignedTo,
		CreatedAt:        createdAt,
		IsPayingCustomer: req.PayingCustomer,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.CreateTicketResponse{ID: id}})
}

// AssignTicket PUT /tickets/:id/assignee.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return apperrors.NewValidationError("username required", nil)
	}

	ticket, err := h.service.AssignTicket(c.UserContext(), id, username)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

func ticketID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("ticket id must be a positive integer", map[string]any{"id": raw})
	}
	return id, nil
}
