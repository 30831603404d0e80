package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/feconecta/feconecta-api/internal/session"
	"github.com/feconecta/feconecta-api/internal/utils"
)

// AuthHandler exposes registration and login.
type AuthHandler struct {
	sessions *session.Manager
	logger   zerolog.Logger
}

// NewAuthHandler creates an auth handler instance.
func NewAuthHandler(sessions *session.Manager, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		logger:   logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register binds auth routes under the provided router group.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/signup", h.signUp)
	router.Post("/signin", h.signIn)
}

type signUpPayload struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

func (h *AuthHandler) signUp(c *fiber.Ctx) error {
	var payload signUpPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	sess, err := h.sessions.SignUp(c.UserContext(), session.SignUpRequest{
		FullName: payload.FullName,
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, session.ErrUsernameTaken), errors.Is(err, session.ErrEmailTaken):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		default:
			h.logger.Warn().Err(err).Msg("sign up rejected")
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account created", toSessionResponse(sess))
}

func (h *AuthHandler) signIn(c *fiber.Ctx) error {
	var payload signInPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	sess, err := h.sessions.SignIn(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}
		h.logger.Error().Err(err).Msg("sign in failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "sign in failed")
	}

	return utils.SendSuccess(c, "signed in", toSessionResponse(sess))
}

func toSessionResponse(sess session.Session) sessionResponse {
	return sessionResponse{
		UserID:   sess.UserID,
		Username: sess.Username,
		FullName: sess.FullName,
		Email:    sess.Email,
		Token:    sess.Token,
	}
}
