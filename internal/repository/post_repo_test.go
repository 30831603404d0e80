package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/feconecta/feconecta-api/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Profile{},
		&models.Post{},
		&models.Hashtag{},
		&models.PostHashtag{},
	))

	return db
}

func seedAuthor(t *testing.T, db *gorm.DB) models.Profile {
	t.Helper()

	author := models.Profile{
		Username:     "mariana",
		FullName:     "Mariana Alves",
		Email:        "mariana@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&author).Error)
	return author
}

func seedPosts(t *testing.T, db *gorm.DB, authorID uint, n int) []models.Post {
	t.Helper()

	repo := NewPostRepository(db)
	posts := make([]models.Post, 0, n)
	for i := 1; i <= n; i++ {
		post := models.Post{
			AuthorID:    authorID,
			Content:     fmt.Sprintf("post numero %d", i),
			ContentType: models.ContentTypeText,
		}
		require.NoError(t, repo.Create(context.Background(), &post))
		posts = append(posts, post)
	}
	return posts
}

func TestPostListPageNewestFirstWithAuthor(t *testing.T) {
	db := testDB(t)
	author := seedAuthor(t, db)
	seedPosts(t, db, author.ID, 7)

	repo := NewPostRepository(db)

	page, err := repo.ListPage(context.Background(), 0, 5)
	require.NoError(t, err)
	require.Len(t, page, 5)
	require.Equal(t, "post numero 7", page[0].Content)
	require.Equal(t, "mariana", page[0].Author.Username)

	rest, err := repo.ListPage(context.Background(), 5, 5)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	require.Equal(t, "post numero 1", rest[1].Content)
}

func TestPostListPageByIDsScopesToSet(t *testing.T) {
	db := testDB(t)
	author := seedAuthor(t, db)
	posts := seedPosts(t, db, author.ID, 5)

	repo := NewPostRepository(db)

	page, err := repo.ListPageByIDs(context.Background(), []uint{posts[0].ID, posts[3].ID}, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, posts[3].ID, page[0].ID)
	require.Equal(t, posts[0].ID, page[1].ID)

	empty, err := repo.ListPageByIDs(context.Background(), nil, 0, 10)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestPostUpdateContentIsAuthorScoped(t *testing.T) {
	db := testDB(t)
	author := seedAuthor(t, db)
	posts := seedPosts(t, db, author.ID, 1)

	repo := NewPostRepository(db)

	updated, err := repo.UpdateContent(context.Background(), posts[0].ID, author.ID, "conteúdo revisado")
	require.NoError(t, err)
	require.Equal(t, "conteúdo revisado", updated.Content)

	_, err = repo.UpdateContent(context.Background(), posts[0].ID, author.ID+1, "invasor")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPostDeleteIsAuthorScoped(t *testing.T) {
	db := testDB(t)
	author := seedAuthor(t, db)
	posts := seedPosts(t, db, author.ID, 1)

	repo := NewPostRepository(db)

	err := repo.Delete(context.Background(), posts[0].ID, author.ID+1)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Delete(context.Background(), posts[0].ID, author.ID))

	_, err = repo.GetByID(context.Background(), posts[0].ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAdjustCounterWhitelistsColumns(t *testing.T) {
	db := testDB(t)
	author := seedAuthor(t, db)
	posts := seedPosts(t, db, author.ID, 1)

	repo := NewPostRepository(db)

	post, err := repo.AdjustCounter(context.Background(), posts[0].ID, "likes_count", 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), post.LikesCount)

	post, err = repo.AdjustCounter(context.Background(), posts[0].ID, "likes_count", -1)
	require.NoError(t, err)
	require.Equal(t, int64(0), post.LikesCount)

	_, err = repo.AdjustCounter(context.Background(), posts[0].ID, "author_id", 1)
	require.Error(t, err)
}
