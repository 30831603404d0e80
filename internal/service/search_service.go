package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/feconecta/feconecta-api/internal/models"
	"github.com/feconecta/feconecta-api/internal/repository"
	"github.com/feconecta/feconecta-api/internal/utils"
)

const (
	searchLimit    = 10
	searchMinQuery = 2
)

// SearchResults bundles the two independent lookups for one settled query.
type SearchResults struct {
	Query    string           `json:"query"`
	Users    []models.Profile `json:"users"`
	Hashtags []models.Hashtag `json:"hashtags"`
}

// SearchService resolves user and hashtag lookups. The two searches are
// independent and may run in parallel; queries shorter than two characters
// short-circuit to empty results without a remote call.
type SearchService struct {
	profiles repository.ProfileRepository
	hashtags repository.HashtagRepository
	debounce time.Duration
	logger   zerolog.Logger
}

// NewSearchService constructs a search service. debounce is the quiet period
// applied by Debounce; non-positive falls back to the default.
func NewSearchService(profiles repository.ProfileRepository, hashtags repository.HashtagRepository, debounce time.Duration, logger zerolog.Logger) *SearchService {
	if debounce <= 0 {
		debounce = utils.DefaultDebounce
	}

	return &SearchService{
		profiles: profiles,
		hashtags: hashtags,
		debounce: debounce,
		logger:   logger.With().Str("component", "search_service").Logger(),
	}
}

// SearchUsers matches the query case-insensitively against username or full
// name. A leading @ is stripped.
func (s *SearchService) SearchUsers(ctx context.Context, query string) ([]models.Profile, error) {
	query = strings.TrimPrefix(strings.TrimSpace(query), "@")
	if len([]rune(query)) < searchMinQuery {
		return nil, nil
	}

	profiles, err := s.profiles.Search(ctx, query, searchLimit)
	if err != nil {
		s.logger.Error().Err(err).Msg("user search failed")
		return nil, err
	}

	return profiles, nil
}

// SearchHashtags matches the query case-insensitively against hashtag
// names, most popular first. A leading # is stripped.
func (s *SearchService) SearchHashtags(ctx context.Context, query string) ([]models.Hashtag, error) {
	query = strings.TrimPrefix(strings.TrimSpace(query), "#")
	if len([]rune(query)) < searchMinQuery {
		return nil, nil
	}

	hashtags, err := s.hashtags.Search(ctx, query, searchLimit)
	if err != nil {
		s.logger.Error().Err(err).Msg("hashtag search failed")
		return nil, err
	}

	return hashtags, nil
}

// Search runs both lookups for one query. Failures in one lookup do not
// discard the other's results.
func (s *SearchService) Search(ctx context.Context, query string) SearchResults {
	users, err := s.SearchUsers(ctx, query)
	if err != nil {
		users = nil
	}

	hashtags, err := s.SearchHashtags(ctx, query)
	if err != nil {
		hashtags = nil
	}

	return SearchResults{Query: query, Users: users, Hashtags: hashtags}
}

// Debounce returns a search-as-you-type input: every keystroke is Set, and
// only the query that survives the configured quiet period reaches the
// backend. The caller owns the returned debouncer's Stop.
func (s *SearchService) Debounce(ctx context.Context, onResults func(SearchResults)) *utils.Debouncer[string] {
	return utils.NewDebouncer(s.debounce, func(query string) {
		onResults(s.Search(ctx, query))
	})
}
