package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/feconecta/feconecta-api/internal/service"
	"github.com/feconecta/feconecta-api/internal/utils"
)

// SearchHandler serves combined user and hashtag lookups.
type SearchHandler struct {
	service *service.SearchService
	logger  zerolog.Logger
}

// NewSearchHandler creates a search handler instance.
func NewSearchHandler(svc *service.SearchService, logger zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger.With().Str("component", "search_handler").Logger(),
	}
}

// Register binds the search route under the provided router group.
func (h *SearchHandler) Register(router fiber.Router) {
	router.Get("/", h.search)
}

func (h *SearchHandler) search(c *fiber.Ctx) error {
	query := c.Query("q")

	return utils.SendSuccess(c, "search results", h.service.Search(c.UserContext(), query))
}
