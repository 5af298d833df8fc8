package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/jupiterclapton/reelfeed/internal/core/domain"
	"github.com/jupiterclapton/reelfeed/internal/core/ports"
)

// CollaborativeScorer implémente le filtrage collaboratif item-based :
// "les gens qui ont aimé ce que tu as aimé ont aussi aimé...".
// Tout repose sur l'historique d'interactions, aucune feature de contenu.
type CollaborativeScorer struct {
	history ports.InteractionHistory
	cfg     domain.RecommendationConfig
}

func NewCollaborativeScorer(history ports.InteractionHistory, cfg domain.RecommendationConfig) *CollaborativeScorer {
	return &CollaborativeScorer{history: history, cfg: cfg}
}

// Score renvoie jusqu'à limit IDs de contenus, triés par affinité décroissante.
// Déterministe à données constantes : les ex æquo sont départagés par ID.
// Un utilisateur sans historique obtient une séquence vide, pas une erreur.
func (s *CollaborativeScorer) Score(ctx context.Context, userID string, limit int) ([]string, error) {
	// 1. Le "seed set" : ce que l'utilisateur a déjà touché
	seeds, err := s.history.RecentInteractions(ctx, userID, s.cfg.MaxSeedItems)
	if err != nil {
		return nil, fmt.Errorf("collaborative scorer: seed interactions for user %s: %w", userID, err)
	}
	if len(seeds) == 0 {
		return nil, nil
	}

	// Dédoublonnage des seeds en conservant l'ordre de première apparition
	// (l'ordre de parcours doit rester stable pour la reproductibilité)
	seedSet := make(map[string]struct{}, len(seeds))
	seedIDs := make([]string, 0, len(seeds))
	for _, rec := range seeds {
		if _, ok := seedSet[rec.ContentID]; ok {
			continue
		}
		seedSet[rec.ContentID] = struct{}{}
		seedIDs = append(seedIDs, rec.ContentID)
	}

	// 2. Le "neighbor set" : qui d'autre a touché ces contenus ?
	neighborSet := make(map[string]struct{})
	neighbors := make([]string, 0)
	for _, contentID := range seedIDs {
		users, err := s.history.UsersWhoInteracted(ctx, contentID, domain.KindAny, s.cfg.MaxSimilarUsersPerItem)
		if err != nil {
			return nil, fmt.Errorf("collaborative scorer: users for content %s: %w", contentID, err)
		}
		for _, uid := range users {
			if uid == userID {
				continue
			}
			if _, ok := neighborSet[uid]; ok {
				continue
			}
			neighborSet[uid] = struct{}{}
			neighbors = append(neighbors, uid)
		}
	}

	// 3. Personne dans le voisinage => rien à recommander (cas nominal, pas une erreur)
	if len(neighbors) == 0 {
		return nil, nil
	}

	// 4+5. Accumulation des scores pondérés par type d'interaction
	scores := make(map[string]float64)
	for _, neighborID := range neighbors {
		recs, err := s.history.RecentInteractions(ctx, neighborID, s.cfg.MaxItemsPerSimilarUser)
		if err != nil {
			return nil, fmt.Errorf("collaborative scorer: interactions of neighbor %s: %w", neighborID, err)
		}
		for _, rec := range recs {
			// Auto-exclusion : ne jamais re-proposer un seed
			if _, ok := seedSet[rec.ContentID]; ok {
				continue
			}
			scores[rec.ContentID] += s.cfg.Weights.For(rec.Kind)
		}
	}

	// 6. Les contenus touchés uniquement via COMMENT (poids 0) sont éliminés
	candidates := make([]string, 0, len(scores))
	for id, score := range scores {
		if score > 0 {
			candidates = append(candidates, id)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		si, sj := scores[candidates[i]], scores[candidates[j]]
		if si != sj {
			return si > sj
		}
		return candidates[i] < candidates[j]
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}
