package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/feconecta/feconecta-api/internal/models"
	"github.com/feconecta/feconecta-api/internal/repository"
	"github.com/feconecta/feconecta-api/internal/session"
	"github.com/feconecta/feconecta-api/internal/utils"
)

func authApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Profile{}))

	sessions := session.NewManager(
		repository.NewProfileRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		"segredo-de-teste",
		zerolog.Nop(),
	)

	app := fiber.New()
	NewAuthHandler(sessions, zerolog.Nop()).Register(app.Group("/auth"))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) (*http.Response, utils.APIResponse) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestSignUpCreatesSession(t *testing.T) {
	app := authApp(t)

	resp, body := postJSON(t, app, "/auth/signup", fiber.Map{
		"full_name": "Maria da Silva",
		"username":  "maria",
		"email":     "maria@example.com",
		"password":  "senha-secreta",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, body.Success)

	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "maria", data["username"])
	require.NotEmpty(t, data["token"])
}

func TestSignUpDuplicateUsernameConflicts(t *testing.T) {
	app := authApp(t)

	resp, _ := postJSON(t, app, "/auth/signup", fiber.Map{
		"full_name": "Maria da Silva",
		"username":  "maria",
		"email":     "maria@example.com",
		"password":  "senha-secreta",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := postJSON(t, app, "/auth/signup", fiber.Map{
		"full_name": "Maria Souza",
		"username":  "maria",
		"email":     "outra@example.com",
		"password":  "senha-secreta",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.False(t, body.Success)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	app := authApp(t)

	resp, _ := postJSON(t, app, "/auth/signup", fiber.Map{
		"full_name": "Maria da Silva",
		"username":  "maria",
		"email":     "maria@example.com",
		"password":  "senha-secreta",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := postJSON(t, app, "/auth/signin", fiber.Map{
		"email":    "maria@example.com",
		"password": "senha-errada",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.False(t, body.Success)

	resp, body = postJSON(t, app, "/auth/signin", fiber.Map{
		"email":    "maria@example.com",
		"password": "senha-secreta",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, body.Success)

	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	require.NotEmpty(t, data["token"])
}
