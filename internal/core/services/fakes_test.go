package services

import (
	"context"
	"sync"
	"time"

	"github.com/jupiterclapton/reelfeed/internal/core/domain"
)

// Fakes en mémoire des ports secondaires, partagés par les tests du package

type fakeHistory struct {
	interactions map[string][]domain.InteractionRecord // par utilisateur
	interactedBy map[string][]string                   // par contenu
	viewed       map[string][]string

	errRecent error
	errUsers  error
	errViewed error
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{
		interactions: make(map[string][]domain.InteractionRecord),
		interactedBy: make(map[string][]string),
		viewed:       make(map[string][]string),
	}
}

func (f *fakeHistory) addInteraction(userID, contentID string, kind domain.InteractionKind) {
	f.interactions[userID] = append(f.interactions[userID], domain.InteractionRecord{
		UserID:    userID,
		ContentID: contentID,
		Kind:      kind,
		CreatedAt: time.Now(),
	})
	f.interactedBy[contentID] = append(f.interactedBy[contentID], userID)
}

func (f *fakeHistory) RecentInteractions(_ context.Context, userID string, limit int) ([]domain.InteractionRecord, error) {
	if f.errRecent != nil {
		return nil, f.errRecent
	}
	recs := f.interactions[userID]
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (f *fakeHistory) UsersWhoInteracted(_ context.Context, contentID string, _ domain.InteractionKind, limit int) ([]string, error) {
	if f.errUsers != nil {
		return nil, f.errUsers
	}
	users := f.interactedBy[contentID]
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (f *fakeHistory) RecentlyViewed(_ context.Context, userID string, limit int) ([]string, error) {
	if f.errViewed != nil {
		return nil, f.errViewed
	}
	ids := f.viewed[userID]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

type fakeCatalog struct {
	contents  []domain.ContentSummary // triés created_at DESC, comme le ferait la requête
	popular   []string
	newest    []string
	random    []string
	subtitles map[string][]domain.Subtitle

	errRecent  error
	errPopular error
	errNewest  error
	errRandom  error
	errByIDs   error
}

func newFakeCatalog(contents ...domain.ContentSummary) *fakeCatalog {
	return &fakeCatalog{
		contents:  contents,
		subtitles: make(map[string][]domain.Subtitle),
	}
}

func (f *fakeCatalog) QueryRecent(_ context.Context, excludeIDs []string, before time.Time, limit int) ([]domain.ContentSummary, error) {
	if f.errRecent != nil {
		return nil, f.errRecent
	}
	excluded := toSet(excludeIDs)
	var out []domain.ContentSummary
	for _, c := range f.contents {
		if _, ok := excluded[c.ID]; ok {
			continue
		}
		if !before.IsZero() && !c.CreatedAt.Before(before) {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeCatalog) QueryByCreators(_ context.Context, creatorIDs []string, before time.Time, limit int) ([]domain.ContentSummary, error) {
	creators := toSet(creatorIDs)
	var out []domain.ContentSummary
	for _, c := range f.contents {
		if _, ok := creators[c.CreatorID]; !ok {
			continue
		}
		if !before.IsZero() && !c.CreatedAt.Before(before) {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func truncateIDs(ids []string, excludeIDs []string, limit int) []string {
	excluded := toSet(excludeIDs)
	out := make([]string, 0, limit)
	for _, id := range ids {
		if _, ok := excluded[id]; ok {
			continue
		}
		out = append(out, id)
		if len(out) == limit {
			break
		}
	}
	return out
}

func (f *fakeCatalog) QueryPopular(_ context.Context, excludeIDs []string, limit int) ([]string, error) {
	if f.errPopular != nil {
		return nil, f.errPopular
	}
	return truncateIDs(f.popular, excludeIDs, limit), nil
}

func (f *fakeCatalog) QueryNewest(_ context.Context, excludeIDs []string, limit int) ([]string, error) {
	if f.errNewest != nil {
		return nil, f.errNewest
	}
	return truncateIDs(f.newest, excludeIDs, limit), nil
}

func (f *fakeCatalog) QueryRandom(_ context.Context, excludeIDs []string, limit int) ([]string, error) {
	if f.errRandom != nil {
		return nil, f.errRandom
	}
	return truncateIDs(f.random, excludeIDs, limit), nil
}

func (f *fakeCatalog) ByIDs(_ context.Context, ids []string) (map[string]domain.ContentSummary, error) {
	if f.errByIDs != nil {
		return nil, f.errByIDs
	}
	byID := make(map[string]domain.ContentSummary, len(f.contents))
	for _, c := range f.contents {
		byID[c.ID] = c
	}
	out := make(map[string]domain.ContentSummary, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (f *fakeCatalog) CreatedAt(_ context.Context, contentID string) (time.Time, error) {
	for _, c := range f.contents {
		if c.ID == contentID {
			return c.CreatedAt, nil
		}
	}
	return time.Time{}, domain.ErrInvalidCursor
}

func (f *fakeCatalog) SubtitlesByContentIDs(_ context.Context, contentIDs []string) (map[string][]domain.Subtitle, error) {
	out := make(map[string][]domain.Subtitle)
	for _, id := range contentIDs {
		if subs, ok := f.subtitles[id]; ok {
			out[id] = subs
		}
	}
	return out, nil
}

type fakeUserDirectory struct {
	profiles map[string]domain.CreatorProfile
}

func (f *fakeUserDirectory) ProfilesByIDs(_ context.Context, userIDs []string) (map[string]domain.CreatorProfile, error) {
	out := make(map[string]domain.CreatorProfile)
	for _, id := range userIDs {
		if p, ok := f.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeGraph struct {
	followed map[string][]string
	err      error
}

func (f *fakeGraph) FollowedCreators(_ context.Context, userID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.followed[userID], nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []prefetchEvent
	err    error
}

type prefetchEvent struct {
	userID      string
	batchNumber int
}

func (f *fakePublisher) PublishPrefetchRequested(_ context.Context, userID string, batchNumber int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, prefetchEvent{userID: userID, batchNumber: batchNumber})
	return nil
}

type fakeScorer struct {
	ids []string
	err error
}

func (f *fakeScorer) Score(_ context.Context, _ string, limit int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	ids := f.ids
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
