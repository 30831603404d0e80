package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/feconecta/feconecta-api/internal/service"
	"github.com/feconecta/feconecta-api/internal/utils"
)

// DailyMessageHandler serves the verse of the day.
type DailyMessageHandler struct {
	service *service.DailyMessageService
	logger  zerolog.Logger
}

// NewDailyMessageHandler creates a daily message handler instance.
func NewDailyMessageHandler(svc *service.DailyMessageService, logger zerolog.Logger) *DailyMessageHandler {
	return &DailyMessageHandler{
		service: svc,
		logger:  logger.With().Str("component", "daily_message_handler").Logger(),
	}
}

// Register binds the daily message routes under the provided router group.
func (h *DailyMessageHandler) Register(router fiber.Router) {
	router.Get("/", h.today)
	router.Post("/refresh", h.refresh)
}

func (h *DailyMessageHandler) today(c *fiber.Ctx) error {
	message, err := h.service.Today(c.UserContext())
	if err != nil {
		h.logger.Error().Err(err).Msg("daily message unavailable")
		return utils.SendError(c, fiber.StatusBadGateway, "daily message unavailable")
	}

	return utils.SendSuccess(c, "daily message", message)
}

func (h *DailyMessageHandler) refresh(c *fiber.Ctx) error {
	message, err := h.service.Refresh(c.UserContext())
	if err != nil {
		h.logger.Error().Err(err).Msg("daily message refresh failed")
		return utils.SendError(c, fiber.StatusBadGateway, "daily message unavailable")
	}

	return utils.SendSuccess(c, "daily message refreshed", message)
}
