package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/feconecta/feconecta-api/internal/service"
	"github.com/feconecta/feconecta-api/internal/utils"
)

// AnalyticsHandler serves the admin dashboard aggregate.
type AnalyticsHandler struct {
	service *service.AnalyticsService
	logger  zerolog.Logger
}

// NewAnalyticsHandler creates an analytics handler instance.
func NewAnalyticsHandler(svc *service.AnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: svc,
		logger:  logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register binds the analytics routes under the provided router group.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/summary", h.summary)
}

func (h *AnalyticsHandler) summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext())
	if err != nil {
		h.logger.Error().Err(err).Msg("analytics aggregation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build analytics summary")
	}

	return utils.SendSuccess(c, "analytics summary", summary)
}
