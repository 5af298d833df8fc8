package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/jupiterclapton/reelfeed/internal/core/domain"
	"github.com/jupiterclapton/reelfeed/internal/core/ports"
)

// Scorer est l'abstraction du moteur collaboratif côté blender
// (permet d'injecter un faux scorer dans les tests)
type Scorer interface {
	Score(ctx context.Context, userID string, limit int) ([]string, error)
}

// RecommendationService assemble le feed "pour toi" : mélange de stratégies
// candidates, batchs précalculés en cache, prefetch asynchrone du batch suivant.
type RecommendationService struct {
	scorer    Scorer
	catalog   ports.ContentCatalog
	history   ports.InteractionHistory
	cache     ports.BatchCache
	publisher ports.EventPublisher
	cfg       domain.RecommendationConfig
}

func NewRecommendationService(
	scorer Scorer,
	catalog ports.ContentCatalog,
	history ports.InteractionHistory,
	cache ports.BatchCache,
	publisher ports.EventPublisher,
	cfg domain.RecommendationConfig,
) *RecommendationService {
	return &RecommendationService{
		scorer:    scorer,
		catalog:   catalog,
		history:   history,
		cache:     cache,
		publisher: publisher,
		cfg:       cfg,
	}
}

// quotas découpe limit selon les proportions configurées.
// Politique d'arrondi : floor sur chaque part, le reliquat va au collaboratif
// (la plus grosse part), pour garantir que la somme vaut exactement limit.
type quotas struct {
	collaborative int
	popularity    int
	recency       int
	random        int
}

func (s *RecommendationService) splitQuotas(limit int) quotas {
	// L'epsilon évite qu'un produit censé être entier (0.3*10 = 2.999...)
	// perde une unité au floor
	floorShare := func(share float64) int {
		return int(share*float64(limit) + 1e-9)
	}
	q := quotas{
		collaborative: floorShare(s.cfg.CollaborativeShare),
		popularity:    floorShare(s.cfg.PopularityShare),
		recency:       floorShare(s.cfg.RecencyShare),
		random:        floorShare(s.cfg.RandomShare),
	}
	q.collaborative += limit - (q.collaborative + q.popularity + q.recency + q.random)
	return q
}

// Blend lance les quatre stratégies EN PARALLÈLE et mélange le tout.
// Un scorer collaboratif en panne dégrade à zéro candidat collaboratif ;
// une panne catalogue, elle, fait échouer le blend (annulation coopérative
// des requêtes sœurs via le contexte du groupe).
// Pas de dédoublonnage inter-stratégies ici : les recouvrements sont acceptés,
// c'est au moment de persister le batch qu'on dédoublonne.
func (s *RecommendationService) Blend(ctx context.Context, userID string, limit int, excludeIDs []string) ([]string, error) {
	q := s.splitQuotas(limit)

	var collaborative, popular, newest, random []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := s.scorer.Score(gctx, userID, q.collaborative)
		if err != nil {
			// Dégradation : le feed survit sans le signal collaboratif
			slog.Warn("⚠️ Collaborative scorer unavailable, degrading to zero candidates",
				"user_id", userID, "error", err)
			return nil
		}
		collaborative = dropExcluded(ids, excludeIDs)
		return nil
	})
	g.Go(func() error {
		ids, err := s.catalog.QueryPopular(gctx, excludeIDs, q.popularity)
		if err != nil {
			return fmt.Errorf("blend: popular candidates for user %s: %w", userID, err)
		}
		popular = ids
		return nil
	})
	g.Go(func() error {
		ids, err := s.catalog.QueryNewest(gctx, excludeIDs, q.recency)
		if err != nil {
			return fmt.Errorf("blend: newest candidates for user %s: %w", userID, err)
		}
		newest = ids
		return nil
	})
	g.Go(func() error {
		ids, err := s.catalog.QueryRandom(gctx, excludeIDs, q.random)
		if err != nil {
			return fmt.Errorf("blend: random candidates for user %s: %w", userID, err)
		}
		random = ids
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	pool := make([]string, 0, len(collaborative)+len(popular)+len(newest)+len(random))
	pool = append(pool, collaborative...)
	pool = append(pool, popular...)
	pool = append(pool, newest...)
	pool = append(pool, random...)

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool, nil
}

// RecommendedFeed sert une tranche du batch courant, en le générant au besoin.
func (s *RecommendationService) RecommendedFeed(ctx context.Context, userID string, batchNumber, offset, limit int) (*domain.FeedPage, error) {
	size, err := s.cache.BatchSize(ctx, userID, batchNumber)
	if err != nil {
		return nil, fmt.Errorf("recommendation cache: size of batch %d for user %s: %w", batchNumber, userID, err)
	}

	// Cache miss => génération synchrone du batch demandé
	if size == 0 {
		ids, err := s.generateBatch(ctx, userID, batchNumber)
		if err != nil {
			return nil, err
		}
		size = len(ids)
		if size == 0 {
			// Rien à recommander (nouveau user + catalogue vide) : page vide, pas d'erreur
			return &domain.FeedPage{Items: []domain.ContentSummary{}}, nil
		}
	}

	ids, err := s.cache.GetRange(ctx, userID, batchNumber, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("recommendation cache: range of batch %d for user %s: %w", batchNumber, userID, err)
	}

	// Le batch peut expirer entre la lecture de sa taille et celle de la
	// tranche : une tranche vide dans les bornes annoncées vaut miss, on
	// régénère tout de suite plutôt que de servir une page vide dont le
	// curseur ne bouge pas
	if len(ids) == 0 && offset < size {
		fresh, err := s.generateBatch(ctx, userID, batchNumber)
		if err != nil {
			return nil, err
		}
		size = len(fresh)
		if size == 0 {
			return &domain.FeedPage{Items: []domain.ContentSummary{}}, nil
		}
		ids, err = s.cache.GetRange(ctx, userID, batchNumber, offset, limit)
		if err != nil {
			return nil, fmt.Errorf("recommendation cache: range of batch %d for user %s: %w", batchNumber, userID, err)
		}
	}

	// Prefetch : passé 50% de consommation d'un batch plein, on demande le
	// suivant en asynchrone. Jamais bloquant pour le lecteur.
	consumed := offset + len(ids)
	if size == s.cfg.BatchSize && float64(consumed) >= s.cfg.PrefetchThreshold*float64(s.cfg.BatchSize) {
		if err := s.publisher.PublishPrefetchRequested(ctx, userID, batchNumber+1); err != nil {
			slog.Warn("⚠️ Prefetch publish failed", "user_id", userID, "next_batch", batchNumber+1, "error", err)
		}
	}

	items, err := s.hydrate(ctx, ids)
	if err != nil {
		return nil, err
	}

	page := &domain.FeedPage{Items: items}
	switch {
	case consumed < size:
		page.HasNext = true
		page.NextCursor = EncodeBatchCursor(batchNumber, consumed)
	case size == s.cfg.BatchSize:
		// Batch plein entièrement consommé : la suite vit dans le batch suivant
		page.HasNext = true
		page.NextCursor = EncodeBatchCursor(batchNumber+1, 0)
	}
	return page, nil
}

// BuildBatch : chemin asynchrone (consumer de prefetch). Ne refait pas le
// travail si le batch existe déjà.
func (s *RecommendationService) BuildBatch(ctx context.Context, userID string, batchNumber int) error {
	size, err := s.cache.BatchSize(ctx, userID, batchNumber)
	if err != nil {
		return fmt.Errorf("recommendation cache: size of batch %d for user %s: %w", batchNumber, userID, err)
	}
	if size > 0 {
		slog.Debug("Batch already present, skipping build", "user_id", userID, "batch", batchNumber)
		return nil
	}
	_, err = s.generateBatch(ctx, userID, batchNumber)
	return err
}

func (s *RecommendationService) Invalidate(ctx context.Context, userID string) error {
	if err := s.cache.ClearAll(ctx, userID); err != nil {
		return fmt.Errorf("recommendation cache: clear batches for user %s: %w", userID, err)
	}
	return nil
}

// generateBatch fait tourner le blender à la taille d'un batch, dédoublonne
// (invariant : aucun doublon dans un batch persisté) et stocke le résultat.
func (s *RecommendationService) generateBatch(ctx context.Context, userID string, batchNumber int) ([]string, error) {
	viewed, err := s.history.RecentlyViewed(ctx, userID, s.cfg.ExclusionWindow)
	if err != nil {
		return nil, fmt.Errorf("recommendation: recently viewed for user %s: %w", userID, err)
	}

	pool, err := s.Blend(ctx, userID, s.cfg.BatchSize, viewed)
	if err != nil {
		return nil, err
	}

	ids := dedupe(pool)
	if len(ids) == 0 {
		return nil, nil
	}

	// Pas de persistance partielle : si la requête a été annulée pendant le
	// blend, on jette tout plutôt que d'écrire un batch douteux
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.cache.PutBatch(ctx, userID, batchNumber, ids); err != nil {
		return nil, fmt.Errorf("recommendation cache: store batch %d for user %s: %w", batchNumber, userID, err)
	}
	slog.Debug("🧮 Recommendation batch generated", "user_id", userID, "batch", batchNumber, "size", len(ids))
	return ids, nil
}

// hydrate transforme les IDs du batch en résumés complets, en conservant
// l'ordre du batch. Les IDs devenus introuvables (contenu supprimé depuis la
// génération) sont ignorés silencieusement.
func (s *RecommendationService) hydrate(ctx context.Context, ids []string) ([]domain.ContentSummary, error) {
	if len(ids) == 0 {
		return []domain.ContentSummary{}, nil
	}
	byID, err := s.catalog.ByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("recommendation: hydrate %d contents: %w", len(ids), err)
	}
	items := make([]domain.ContentSummary, 0, len(ids))
	for _, id := range ids {
		if summary, ok := byID[id]; ok {
			items = append(items, summary)
		}
	}
	return items, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func dropExcluded(ids, excludeIDs []string) []string {
	if len(excludeIDs) == 0 {
		return ids
	}
	excluded := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := excluded[id]; ok {
			continue
		}
		out = append(out, id)
	}
	return out
}
