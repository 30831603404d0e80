// Package session owns the process-wide auth state. It is initialised once
// and read (never mutated) by every data hook; hooks observe changes through
// OnChange listeners.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/feconecta/feconecta-api/internal/models"
	"github.com/feconecta/feconecta-api/internal/repository"
)

const tokenLifetime = 24 * time.Hour

// Session errors.
var (
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
)

// Session is the active authenticated identity of this client instance.
type Session struct {
	UserID   uint
	Username string
	FullName string
	Email    string
	Token    string
}

// SignUpRequest carries the fields collected by the registration form.
type SignUpRequest struct {
	FullName string `validate:"required,min=2,max=255"`
	Username string `validate:"required,min=3,max=32"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Manager holds the single active session and notifies listeners on change.
type Manager struct {
	profiles repository.ProfileRepository
	validate *validator.Validate
	secret   string
	logger   zerolog.Logger

	mu        sync.RWMutex
	current   *Session
	listeners map[int]func(*Session)
	nextID    int
}

// NewManager constructs a session manager.
func NewManager(profiles repository.ProfileRepository, validate *validator.Validate, secret string, logger zerolog.Logger) *Manager {
	return &Manager{
		profiles:  profiles,
		validate:  validate,
		secret:    secret,
		logger:    logger.With().Str("component", "session").Logger(),
		listeners: make(map[int]func(*Session)),
	}
}

// SignUp registers a new account, bootstraps its profile and signs in.
// The avatar URL is generated from the url-encoded full name.
func (m *Manager) SignUp(ctx context.Context, req SignUpRequest) (Session, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := m.validate.Struct(req); err != nil {
		return Session{}, err
	}

	if strings.ContainsAny(req.Username, " \t") {
		return Session{}, errors.New("username must not contain spaces")
	}

	if _, err := m.profiles.GetByUsername(ctx, req.Username); err == nil {
		return Session{}, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, err
	}

	if _, err := m.profiles.GetByEmail(ctx, req.Email); err == nil {
		return Session{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	profile := models.Profile{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		AvatarURL:    fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=random", url.QueryEscape(req.FullName)),
	}

	if err := m.profiles.Create(ctx, &profile); err != nil {
		return Session{}, fmt.Errorf("create profile: %w", err)
	}

	m.logger.Info().Str("username", profile.Username).Msg("account created")

	return m.establish(profile)
}

// SignIn authenticates by email and password.
func (m *Manager) SignIn(ctx context.Context, email, password string) (Session, error) {
	profile, err := m.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	return m.establish(profile)
}

// SignOut destroys the active session and notifies listeners.
func (m *Manager) SignOut() {
	m.mu.Lock()
	m.current = nil
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	for _, listener := range listeners {
		listener(nil)
	}
}

// Current returns a copy of the active session, or nil when signed out.
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return nil
	}

	copied := *m.current
	return &copied
}

// OnChange registers a listener invoked with the new session (nil on sign
// out) and returns its teardown.
func (m *Manager) OnChange(listener func(*Session)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = listener
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// ParseToken validates a bearer token and returns the subject user id.
func (m *Manager) ParseToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(m.secret), nil
	})
	if err != nil || !token.Valid {
		return 0, ErrNotLoggedIn
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrNotLoggedIn
	}

	subject, ok := claims["sub"].(float64)
	if !ok || subject < 0 {
		return 0, ErrNotLoggedIn
	}

	return uint(subject), nil
}

func (m *Manager) establish(profile models.Profile) (Session, error) {
	token, err := m.issueToken(profile)
	if err != nil {
		return Session{}, err
	}

	session := Session{
		UserID:   profile.ID,
		Username: profile.Username,
		FullName: profile.FullName,
		Email:    profile.Email,
		Token:    token,
	}

	m.mu.Lock()
	m.current = &session
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	notified := session
	for _, listener := range listeners {
		listener(&notified)
	}

	return session, nil
}

func (m *Manager) issueToken(profile models.Profile) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      profile.ID,
		"username": profile.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(tokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

func (m *Manager) snapshotListeners() []func(*Session) {
	listeners := make([]func(*Session), 0, len(m.listeners))
	for _, listener := range m.listeners {
		listeners = append(listeners, listener)
	}
	return listeners
}
