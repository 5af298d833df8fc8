package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jupiterclapton/reelfeed/internal/core/domain"
	"github.com/jupiterclapton/reelfeed/internal/core/ports"
)

// FeedService assemble les pages du feed principal et du feed "abonnements".
// Pagination keyset (created_at < curseur) : jamais de OFFSET qui s'écroule
// au fil du scroll infini.
type FeedService struct {
	catalog ports.ContentCatalog
	history ports.InteractionHistory
	users   ports.UserDirectory
	graph   ports.SocialGraph
	cfg     domain.RecommendationConfig
}

func NewFeedService(
	catalog ports.ContentCatalog,
	history ports.InteractionHistory,
	users ports.UserDirectory,
	graph ports.SocialGraph,
	cfg domain.RecommendationConfig,
) *FeedService {
	return &FeedService{
		catalog: catalog,
		history: history,
		users:   users,
		graph:   graph,
		cfg:     cfg,
	}
}

// MainFeed : tri par récence, filtré par les contenus vus récemment.
// Si la récupération du set d'exclusion échoue, la requête échoue (fail-closed) :
// mieux vaut une erreur qu'un feed qui ressert ce que l'utilisateur vient de voir.
func (s *FeedService) MainFeed(ctx context.Context, userID, cursor string, limit int) (*domain.FeedPage, error) {
	var (
		viewed []string
		before time.Time
	)

	// Set d'exclusion et résolution du curseur sont indépendants : en parallèle
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := s.history.RecentlyViewed(gctx, userID, s.cfg.ExclusionWindow)
		if err != nil {
			return fmt.Errorf("main feed: recently viewed for user %s: %w", userID, err)
		}
		viewed = ids
		return nil
	})
	g.Go(func() error {
		ts, err := s.resolveCursor(gctx, cursor)
		if err != nil {
			return err
		}
		before = ts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// limit+1 : l'item excédentaire sert uniquement à calculer hasNext
	items, err := s.catalog.QueryRecent(ctx, viewed, before, limit+1)
	if err != nil {
		return nil, fmt.Errorf("main feed: query catalog for user %s: %w", userID, err)
	}

	return s.buildPage(ctx, items, limit)
}

// FollowingFeed : même mécanique curseur/troncature, mais le prédicat
// d'éligibilité devient "créateur suivi" et il n'y a pas d'exclusion par récence.
func (s *FeedService) FollowingFeed(ctx context.Context, userID, cursor string, limit int) (*domain.FeedPage, error) {
	creators, err := s.graph.FollowedCreators(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("following feed: followed creators for user %s: %w", userID, err)
	}
	if len(creators) == 0 {
		return &domain.FeedPage{Items: []domain.ContentSummary{}}, nil
	}

	before, err := s.resolveCursor(ctx, cursor)
	if err != nil {
		return nil, err
	}

	items, err := s.catalog.QueryByCreators(ctx, creators, before, limit+1)
	if err != nil {
		return nil, fmt.Errorf("following feed: query catalog for user %s: %w", userID, err)
	}

	return s.buildPage(ctx, items, limit)
}

// resolveCursor traduit un curseur opaque (ID de contenu) en date de création.
// Le client ne doit JAMAIS supposer que le curseur est un timestamp.
func (s *FeedService) resolveCursor(ctx context.Context, cursor string) (time.Time, error) {
	if cursor == "" {
		return time.Time{}, nil
	}
	ts, err := s.catalog.CreatedAt(ctx, cursor)
	if err != nil {
		return time.Time{}, fmt.Errorf("resolve cursor %q: %w", cursor, err)
	}
	return ts, nil
}

// buildPage tronque à limit, calcule hasNext/nextCursor et hydrate les items
// (sous-titres + profils créateurs, un round-trip batch chacun).
func (s *FeedService) buildPage(ctx context.Context, items []domain.ContentSummary, limit int) (*domain.FeedPage, error) {
	hasNext := len(items) > limit
	if hasNext {
		items = items[:limit]
	}

	if err := s.hydrate(ctx, items); err != nil {
		return nil, err
	}

	page := &domain.FeedPage{Items: items, HasNext: hasNext}
	if hasNext && len(items) > 0 {
		page.NextCursor = items[len(items)-1].ID
	}
	return page, nil
}

func (s *FeedService) hydrate(ctx context.Context, items []domain.ContentSummary) error {
	if len(items) == 0 {
		return nil
	}

	contentIDs := make([]string, len(items))
	creatorSet := make(map[string]struct{}, len(items))
	creatorIDs := make([]string, 0, len(items))
	for i, item := range items {
		contentIDs[i] = item.ID
		if _, ok := creatorSet[item.CreatorID]; !ok {
			creatorSet[item.CreatorID] = struct{}{}
			creatorIDs = append(creatorIDs, item.CreatorID)
		}
	}

	subtitles, err := s.catalog.SubtitlesByContentIDs(ctx, contentIDs)
	if err != nil {
		return fmt.Errorf("hydrate: subtitles for %d contents: %w", len(contentIDs), err)
	}
	profiles, err := s.users.ProfilesByIDs(ctx, creatorIDs)
	if err != nil {
		return fmt.Errorf("hydrate: profiles for %d creators: %w", len(creatorIDs), err)
	}

	for i := range items {
		items[i].Subtitles = subtitles[items[i].ID]
		if profile, ok := profiles[items[i].CreatorID]; ok {
			p := profile
			items[i].Creator = &p
		}
	}
	return nil
}
