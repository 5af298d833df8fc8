package ports

import (
	"context"

	"github.com/jupiterclapton/reelfeed/internal/core/domain"
)

// --- DRIVING (Ce que le service expose) ---

type FeedService interface {
	// MainFeed : le feed principal, trié par récence, filtré par le "vu récemment".
	// cursor est un ID de contenu opaque (page 1 si vide).
	MainFeed(ctx context.Context, userID, cursor string, limit int) (*domain.FeedPage, error)

	// FollowingFeed : même mécanique de pagination, mais restreint aux créateurs suivis.
	// Pas de filtre "vu récemment" ici : on veut revoir les posts de ses abonnements.
	FollowingFeed(ctx context.Context, userID, cursor string, limit int) (*domain.FeedPage, error)
}

type RecommendationService interface {
	// RecommendedFeed sert le feed "pour toi" depuis les batchs précalculés.
	// Génère le batch à la volée en cas de miss, et déclenche le prefetch
	// asynchrone du batch suivant passé le seuil de consommation.
	RecommendedFeed(ctx context.Context, userID string, batchNumber, offset, limit int) (*domain.FeedPage, error)

	// BuildBatch précalcule un batch s'il n'existe pas déjà (appelé par le
	// consumer de prefetch, jamais par le chemin de lecture).
	BuildBatch(ctx context.Context, userID string, batchNumber int) error

	// Invalidate purge tous les batchs d'un utilisateur (déclenché quand ses
	// interactions changent en masse). Idempotent.
	Invalidate(ctx context.Context, userID string) error
}
