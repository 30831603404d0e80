package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/feconecta/feconecta-api/internal/scripture"
	"github.com/feconecta/feconecta-api/pkg/ai"
)

func verseServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"reference":"Salmos 23:1","text":"O Senhor é o meu pastor; nada me faltará.","translation_name":"Almeida"}`)
	}))
	t.Cleanup(server.Close)

	return server
}

func unconfiguredAI(t *testing.T) *ai.Client {
	t.Helper()

	client, err := ai.NewClient(ai.Config{Logger: testLogger()})
	require.NoError(t, err)
	return client
}

func TestDailyMessageCachesPerDay(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	cache := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	var hits atomic.Int64
	server := verseServer(t, &hits)

	svc := NewDailyMessageService(
		scripture.NewClient(server.URL, testLogger()),
		unconfiguredAI(t),
		cache,
		24*time.Hour,
		testLogger(),
		nil,
	)

	first, err := svc.Today(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Salmos 23:1", first.Verse.Reference)
	require.NotEmpty(t, first.Reflection)
	require.Equal(t, int64(1), hits.Load())

	second, err := svc.Today(context.Background())
	require.NoError(t, err)
	require.Equal(t, first.Verse, second.Verse)
	require.Equal(t, int64(1), hits.Load(), "second call must be served from cache")
}

func TestDailyMessageRefreshBypassesCache(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	cache := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	var hits atomic.Int64
	server := verseServer(t, &hits)

	svc := NewDailyMessageService(
		scripture.NewClient(server.URL, testLogger()),
		unconfiguredAI(t),
		cache,
		24*time.Hour,
		testLogger(),
		nil,
	)

	_, err = svc.Today(context.Background())
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), hits.Load())
}

func TestDailyMessageRotatesWithTheCalendar(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	cache := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	var hits atomic.Int64
	server := verseServer(t, &hits)

	day := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	svc := NewDailyMessageService(
		scripture.NewClient(server.URL, testLogger()),
		unconfiguredAI(t),
		cache,
		48*time.Hour,
		testLogger(),
		func() time.Time { return day },
	)

	_, err = svc.Today(context.Background())
	require.NoError(t, err)

	day = day.Add(24 * time.Hour)
	_, err = svc.Today(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), hits.Load(), "a new calendar day must generate a new message")
}

func TestDailyMessageWorksWithoutCache(t *testing.T) {
	var hits atomic.Int64
	server := verseServer(t, &hits)

	svc := NewDailyMessageService(
		scripture.NewClient(server.URL, testLogger()),
		unconfiguredAI(t),
		nil,
		time.Hour,
		testLogger(),
		nil,
	)

	message, err := svc.Today(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Salmos 23:1", message.Verse.Reference)
}
