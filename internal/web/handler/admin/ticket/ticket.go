// Package ticket provides back-office endpoints for support tickets.
package ticket

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/playops/playops-admin/internal/auth"
	"github.com/playops/playops-admin/internal/config"
	"github.com/playops/playops-admin/internal/db/models"
	"github.com/playops/playops-admin/internal/perm"
	"github.com/playops/playops-admin/internal/web/handler"
)

const (
	// Path is the base path for ticket management.
	Path = handler.AdminPath + "/tickets"

	// DefaultPageSize for pagination.
	DefaultPageSize = 25
)

// Service provides support ticket operations.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// createRequest opens a ticket on behalf of a player.
type createRequest struct {
	PlayerID uint64 `json:"player_id" validate:"required"`
	Subject  string `json:"subject" validate:"required,max=255"`
	Body     string `json:"body"`
}

// replyRequest adds one message to the thread.
type replyRequest struct {
	Body string `json:"body" validate:"required"`
	// Pending marks the ticket as waiting on the player after this reply.
	Pending bool `json:"pending"`
}

// assignRequest changes the working agent.
type assignRequest struct {
	AssigneeID *uint64 `json:"assignee_id"`
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.validator = validator.New()

	app.Get(Path, auth.RequirePermission(perm.TicketView), s.List)
	app.Get(Path+"/:id", auth.RequirePermission(perm.TicketView), s.Get)
	app.Post(Path, auth.RequirePermission(perm.TicketManage), s.Create)
	app.Post(Path+"/:id/replies", auth.RequirePermission(perm.TicketManage), s.Reply)
	app.Put(Path+"/:id/assignee", auth.RequirePermission(perm.TicketManage), s.Assign)
	app.Post(Path+"/:id/close", auth.RequirePermission(perm.TicketManage), s.Close)
}

// List returns tickets, optionally filtered by status, newest first.
func (s *Service) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > 100 {
		pageSize = DefaultPageSize
	}

	var (
		tickets []models.SupportTicket
		total   int64
		query   = s.db.WithContext(c.UserContext()).Model(&models.SupportTicket{})
	)

	if status := c.Query("status", ""); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list tickets")
	}

	if err := query.Order("created_at DESC").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&tickets).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list tickets")
	}

	return c.JSON(fiber.Map{
		"tickets":  tickets,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// Get returns one ticket with its conversation thread.
func (s *Service) Get(c *fiber.Ctx) error {
	ticket, err := s.ticketFromParam(c)
	if err != nil {
		return err
	}

	var replies []models.TicketReply

	if err := s.db.WithContext(c.UserContext()).
		Where("ticket_id = ?", ticket.ID).
		Order("created_at").
		Find(&replies).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load ticket")
	}

	return c.JSON(fiber.Map{
		"ticket":  ticket,
		"replies": replies,
	})
}

// Create opens a ticket on behalf of a player (e.g. from a phone call).
func (s *Service) Create(c *fiber.Ctx) error {
	var req createRequest

	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	if err := s.validator.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	ticket := models.SupportTicket{
		Reference: uuid.NewString(),
		PlayerID:  req.PlayerID,
		Subject:   req.Subject,
		Body:      req.Body,
		Status:    models.TicketStatusOpen,
	}

	if err := s.db.WithContext(c.UserContext()).Create(&ticket).Error; err != nil {
		log.Error().Err(err).Uint64("player_id", req.PlayerID).Msg("failed to create ticket")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create ticket")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ticket": ticket})
}

// Reply appends an agent message and moves the ticket to open or pending.
func (s *Service) Reply(c *fiber.Ctx) error {
	ticket, err := s.ticketFromParam(c)
	if err != nil {
		return err
	}

	if ticket.Status == models.TicketStatusClosed {
		return fiber.NewError(fiber.StatusConflict, "ticket is closed")
	}

	var req replyRequest

	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	if err := s.validator.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	sess := auth.FromContext(c)

	reply := models.TicketReply{
		TicketID: ticket.ID,
		AuthorID: sess.User.ID,
		Body:     req.Body,
	}

	status := models.TicketStatusOpen
	if req.Pending {
		status = models.TicketStatusPending
	}

	err = s.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reply).Error; err != nil {
			return err
		}

		return tx.Model(&models.SupportTicket{}).
			Where("id = ?", ticket.ID).
			Update("status", status).Error
	})
	if err != nil {
		log.Error().Err(err).Uint64("ticket_id", ticket.ID).Msg("failed to reply to ticket")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reply to ticket")
	}

	ticket.Status = status

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ticket": ticket,
		"reply":  reply,
	})
}

// Assign sets or clears the working agent.
func (s *Service) Assign(c *fiber.Ctx) error {
	ticket, err := s.ticketFromParam(c)
	if err != nil {
		return err
	}

	var req assignRequest

	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form data")
	}

	if err := s.db.WithContext(c.UserContext()).Model(&models.SupportTicket{}).
		Where("id = ?", ticket.ID).
		Update("assignee_id", req.AssigneeID).Error; err != nil {
		log.Error().Err(err).Uint64("ticket_id", ticket.ID).Msg("failed to assign ticket")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to assign ticket")
	}

	ticket.AssigneeID = req.AssigneeID

	return c.JSON(fiber.Map{"ticket": ticket})
}

// Close resolves the ticket. Closing a closed ticket is a no-op.
func (s *Service) Close(c *fiber.Ctx) error {
	ticket, err := s.ticketFromParam(c)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(c.UserContext()).Model(&models.SupportTicket{}).
		Where("id = ?", ticket.ID).
		Update("status", models.TicketStatusClosed).Error; err != nil {
		log.Error().Err(err).Uint64("ticket_id", ticket.ID).Msg("failed to close ticket")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to close ticket")
	}

	ticket.Status = models.TicketStatusClosed

	return c.JSON(fiber.Map{"ticket": ticket})
}

func (s *Service) ticketFromParam(c *fiber.Ctx) (*models.SupportTicket, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid ticket id")
	}

	var ticket models.SupportTicket

	dbErr := s.db.WithContext(c.UserContext()).First(&ticket, id).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "ticket not found")
	}

	if dbErr != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to load ticket")
	}

	return &ticket, nil
}
