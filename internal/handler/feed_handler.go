package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/feconecta/feconecta-api/internal/realtime"
	"github.com/feconecta/feconecta-api/internal/repository"
	"github.com/feconecta/feconecta-api/internal/utils"
)

// FeedHandler serves feed page snapshots and a live change stream.
type FeedHandler struct {
	posts    repository.PostRepository
	broker   *realtime.Broker
	pageSize int
	logger   zerolog.Logger
}

// NewFeedHandler creates a feed handler instance.
func NewFeedHandler(posts repository.PostRepository, broker *realtime.Broker, pageSize int, logger zerolog.Logger) *FeedHandler {
	if pageSize <= 0 {
		pageSize = 10
	}

	return &FeedHandler{
		posts:    posts,
		broker:   broker,
		pageSize: pageSize,
		logger:   logger.With().Str("component", "feed_handler").Logger(),
	}
}

// Register binds feed routes under the provided router group.
func (h *FeedHandler) Register(router fiber.Router) {
	router.Get("/", h.page)

	router.Use("/stream", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/stream", websocket.New(h.stream))
}

func (h *FeedHandler) page(c *fiber.Ctx) error {
	page := 0
	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
		}
		page = parsed
	}

	posts, err := h.posts.ListPage(c.UserContext(), page*h.pageSize, h.pageSize)
	if err != nil {
		h.logger.Error().Err(err).Int("page", page).Msg("feed page fetch failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load feed")
	}

	return utils.SendSuccess(c, "feed page", fiber.Map{
		"page":     page,
		"items":    posts,
		"has_more": len(posts) == h.pageSize,
	})
}

// stream pushes realtime post change events to the connected client until
// it disconnects.
func (h *FeedHandler) stream(conn *websocket.Conn) {
	events, teardown := h.broker.Subscribe(repository.TablePosts)
	defer teardown()
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug().Err(err).Msg("feed stream write failed")
				return
			}
		}
	}
}
