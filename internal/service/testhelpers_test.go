package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/feconecta/feconecta-api/internal/models"
	"github.com/feconecta/feconecta-api/internal/realtime"
	"github.com/feconecta/feconecta-api/internal/repository"
	"github.com/feconecta/feconecta-api/internal/session"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Profile{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
		&models.Hashtag{},
		&models.PostHashtag{},
		&models.Follow{},
		&models.Notification{},
		&models.Transaction{},
		&models.Community{},
		&models.CommunityMember{},
		&models.Event{},
		&models.EventRSVP{},
		&models.StudyPlan{},
		&models.PlanDay{},
		&models.PlanProgress{},
		&models.Note{},
	))

	return db
}

// fixture wires the full service graph over an in-memory database.
type fixture struct {
	db            *gorm.DB
	sessions      *session.Manager
	broker        *realtime.Broker
	profiles      repository.ProfileRepository
	posts         repository.PostRepository
	likes         repository.LikeRepository
	comments      repository.CommentRepository
	hashtags      repository.HashtagRepository
	follows       repository.FollowRepository
	notifications *NotificationService
	postService   *PostService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testDB(t)
	validate := validator.New(validator.WithRequiredStructEnabled())

	f := &fixture{
		db:       db,
		broker:   realtime.NewBroker(nil, nil, "", testLogger()),
		profiles: repository.NewProfileRepository(db),
		posts:    repository.NewPostRepository(db),
		likes:    repository.NewLikeRepository(db),
		comments: repository.NewCommentRepository(db),
		hashtags: repository.NewHashtagRepository(db),
		follows:  repository.NewFollowRepository(db),
	}

	f.sessions = session.NewManager(f.profiles, validate, "test-secret", testLogger())
	f.notifications = NewNotificationService(repository.NewNotificationRepository(db), f.broker, testLogger())
	f.postService = NewPostService(
		f.posts, f.likes, f.hashtags, f.profiles,
		f.notifications, f.sessions, f.broker, validate, testLogger(),
	)

	return f
}

// signUp registers and signs in a user; the new account becomes the active
// session.
func (f *fixture) signUp(t *testing.T, username string) session.Session {
	t.Helper()

	sess, err := f.sessions.SignUp(context.Background(), session.SignUpRequest{
		FullName: username + " Silva",
		Username: username,
		Email:    username + "@example.com",
		Password: "senha-secreta",
	})
	require.NoError(t, err)

	return sess
}

func (f *fixture) createPost(t *testing.T, content string) models.Post {
	t.Helper()

	post, err := f.postService.Create(context.Background(), CreatePostRequest{
		Content:     content,
		ContentType: models.ContentTypeText,
	})
	require.NoError(t, err)

	return post
}
