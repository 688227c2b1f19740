package controller

import (
	"github.com/gofiber/fiber/v2"

	"doc-chat-be/internal/dto"
	"doc-chat-be/internal/pkg/serverutils"
	"doc-chat-be/internal/repository/memory"
	"doc-chat-be/internal/service"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	sessionRepo     *memory.SessionRepository
	consumerService service.IConsumerService
}

func NewHealthController(sessionRepo *memory.SessionRepository, consumerService service.IConsumerService) IHealthController {
	return &healthController{
		sessionRepo:     sessionRepo,
		consumerService: consumerService,
	}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("ok", dto.HealthResponse{
		ActiveSessions:  c.sessionRepo.Count(),
		UploadsIndexed:  c.consumerService.UploadsIndexed(),
		SessionsEvicted: c.consumerService.SessionsEvicted(),
	}))
}
