package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jupiterclapton/reelfeed/internal/core/domain"
)

type fakeFeedService struct {
	page      *domain.FeedPage
	err       error
	lastUser  string
	lastLimit int
}

func (f *fakeFeedService) MainFeed(_ context.Context, userID, _ string, limit int) (*domain.FeedPage, error) {
	f.lastUser, f.lastLimit = userID, limit
	return f.page, f.err
}

func (f *fakeFeedService) FollowingFeed(_ context.Context, userID, _ string, limit int) (*domain.FeedPage, error) {
	f.lastUser, f.lastLimit = userID, limit
	return f.page, f.err
}

type fakeRecommendationService struct {
	page        *domain.FeedPage
	err         error
	lastBatch   int
	lastOffset  int
	invalidated []string
}

func (f *fakeRecommendationService) RecommendedFeed(_ context.Context, _ string, batchNumber, offset, _ int) (*domain.FeedPage, error) {
	f.lastBatch, f.lastOffset = batchNumber, offset
	return f.page, f.err
}

func (f *fakeRecommendationService) BuildBatch(context.Context, string, int) error { return nil }

func (f *fakeRecommendationService) Invalidate(_ context.Context, userID string) error {
	f.invalidated = append(f.invalidated, userID)
	return nil
}

func emptyPage() *domain.FeedPage {
	return &domain.FeedPage{Items: []domain.ContentSummary{}}
}

func newTestServer(feed *fakeFeedService, reco *fakeRecommendationService) http.Handler {
	if feed.page == nil {
		feed.page = emptyPage()
	}
	if reco.page == nil {
		reco.page = emptyPage()
	}
	return NewServer(feed, reco).Router()
}

func doRequest(t *testing.T, handler http.Handler, method, target, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestFeedRequiresIdentity(t *testing.T) {
	handler := newTestServer(&fakeFeedService{}, &fakeRecommendationService{})

	for _, target := range []string{"/v1/feed", "/v1/feed/following", "/v1/feed/recommended"} {
		rec := doRequest(t, handler, http.MethodGet, target, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "target=%s", target)
	}
}

func TestFeedResponseShape(t *testing.T) {
	feed := &fakeFeedService{page: &domain.FeedPage{
		Items: []domain.ContentSummary{{
			ID:        "X",
			CreatorID: "alice",
			Caption:   "demo",
			CreatedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
			Counters:  domain.Counters{Likes: 3},
			Creator:   &domain.CreatorProfile{ID: "alice", Handle: "@alice"},
		}},
		NextCursor: "X",
		HasNext:    true,
	}}
	handler := newTestServer(feed, &fakeRecommendationService{})

	rec := doRequest(t, handler, http.MethodGet, "/v1/feed", "U")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Content []struct {
			ID      string `json:"id"`
			Stats   struct{ Likes int64 }
			Creator *struct {
				Handle string `json:"handle"`
			} `json:"creator"`
		} `json:"content"`
		NextCursor *string `json:"nextCursor"`
		HasNext    bool    `json:"hasNext"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	require.Len(t, body.Content, 1)
	assert.Equal(t, "X", body.Content[0].ID)
	assert.Equal(t, int64(3), body.Content[0].Stats.Likes)
	require.NotNil(t, body.Content[0].Creator)
	assert.Equal(t, "@alice", body.Content[0].Creator.Handle)
	require.NotNil(t, body.NextCursor)
	assert.Equal(t, "X", *body.NextCursor)
	assert.True(t, body.HasNext)
}

func TestFeedNextCursorIsNullOnLastPage(t *testing.T) {
	handler := newTestServer(&fakeFeedService{}, &fakeRecommendationService{})

	rec := doRequest(t, handler, http.MethodGet, "/v1/feed", "U")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Nil(t, body["nextCursor"])
	assert.Equal(t, false, body["hasNext"])
}

func TestFeedLimitClamping(t *testing.T) {
	feed := &fakeFeedService{}
	handler := newTestServer(feed, &fakeRecommendationService{})

	cases := map[string]int{
		"":    20,  // défaut
		"7":   7,   // passe tel quel
		"0":   1,   // borné en bas
		"500": 100, // borné en haut
		"abc": 20,  // invalide => défaut
		"-3":  1,
	}
	for raw, want := range cases {
		target := "/v1/feed"
		if raw != "" {
			target += "?limit=" + raw
		}
		rec := doRequest(t, handler, http.MethodGet, target, "U")
		require.Equal(t, http.StatusOK, rec.Code, "limit=%q", raw)
		assert.Equal(t, want, feed.lastLimit, "limit=%q", raw)
	}
}

func TestRecommendedFeedCursorParsing(t *testing.T) {
	reco := &fakeRecommendationService{}
	handler := newTestServer(&fakeFeedService{}, reco)

	rec := doRequest(t, handler, http.MethodGet, "/v1/feed/recommended?cursor=2:40", "U")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, reco.lastBatch)
	assert.Equal(t, 40, reco.lastOffset)

	rec = doRequest(t, handler, http.MethodGet, "/v1/feed/recommended?cursor=junk", "U")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidCursorMapsToBadRequest(t *testing.T) {
	feed := &fakeFeedService{err: domain.ErrInvalidCursor}
	handler := newTestServer(feed, &fakeRecommendationService{})

	rec := doRequest(t, handler, http.MethodGet, "/v1/feed?cursor=stale", "U")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidateEndpoint(t *testing.T) {
	reco := &fakeRecommendationService{}
	handler := newTestServer(&fakeFeedService{}, reco)

	rec := doRequest(t, handler, http.MethodPost, "/v1/internal/recommendations/U42/invalidate", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"U42"}, reco.invalidated)
}
