package ports

import (
	"context"
	"time"

	"github.com/jupiterclapton/reelfeed/internal/core/domain"
)

// --- DRIVEN (Ce dont le service a besoin) ---

type InteractionHistory interface {
	// RecentInteractions : les dernières interactions d'un utilisateur, les plus
	// récentes d'abord
	RecentInteractions(ctx context.Context, userID string, limit int) ([]domain.InteractionRecord, error)

	// UsersWhoInteracted : les utilisateurs ayant interagi avec un contenu.
	// kind = domain.KindAny pour ne pas filtrer par type.
	UsersWhoInteracted(ctx context.Context, contentID string, kind domain.InteractionKind, limit int) ([]string, error)

	// RecentlyViewed : les IDs de contenus vus récemment (set d'exclusion du feed)
	RecentlyViewed(ctx context.Context, userID string, limit int) ([]string, error)
}

type ContentCatalog interface {
	// QueryRecent : contenus publiés non supprimés, hors excludeIDs, strictement
	// antérieurs à before (zéro = première page), tri created_at DESC
	QueryRecent(ctx context.Context, excludeIDs []string, before time.Time, limit int) ([]domain.ContentSummary, error)

	// QueryByCreators : même pagination keyset mais restreint à un set de créateurs
	QueryByCreators(ctx context.Context, creatorIDs []string, before time.Time, limit int) ([]domain.ContentSummary, error)

	// Les trois requêtes candidates du blender (IDs seuls, l'hydratation vient après)
	QueryPopular(ctx context.Context, excludeIDs []string, limit int) ([]string, error)
	QueryNewest(ctx context.Context, excludeIDs []string, limit int) ([]string, error)
	QueryRandom(ctx context.Context, excludeIDs []string, limit int) ([]string, error)

	// ByIDs : hydratation batch (un seul round-trip SQL via ANY($1))
	ByIDs(ctx context.Context, ids []string) (map[string]domain.ContentSummary, error)

	// CreatedAt résout un curseur opaque (ID de contenu) en date de création
	CreatedAt(ctx context.Context, contentID string) (time.Time, error)

	// SubtitlesByContentIDs : sous-titres pour tout un set d'IDs en un round-trip
	SubtitlesByContentIDs(ctx context.Context, contentIDs []string) (map[string][]domain.Subtitle, error)
}

type UserDirectory interface {
	// ProfilesByIDs : profils créateurs en batch (hydratation du feed)
	ProfilesByIDs(ctx context.Context, userIDs []string) (map[string]domain.CreatorProfile, error)
}

type SocialGraph interface {
	// FollowedCreators : les créateurs suivis par userID
	FollowedCreators(ctx context.Context, userID string) ([]string, error)
}

// BatchCache stocke les batchs de recommandations précalculés.
// Le backend (Redis) gère lui-même l'expiration : pas de re-check de timestamp ici.
type BatchCache interface {
	// GetBatch renvoie la séquence complète ; une séquence vide vaut miss
	GetBatch(ctx context.Context, userID string, batchNumber int) ([]string, error)

	// PutBatch remplace atomiquement le batch et (re)pose le TTL.
	// Refuse une séquence vide (domain.ErrEmptyBatch).
	PutBatch(ctx context.Context, userID string, batchNumber int, ids []string) error

	// GetRange : lecture partielle [offset, offset+count) sans matérialiser le batch
	GetRange(ctx context.Context, userID string, batchNumber, offset, count int) ([]string, error)

	BatchSize(ctx context.Context, userID string, batchNumber int) (int, error)

	// ClearAll supprime tous les batchs de l'utilisateur, sans erreur s'il n'y en a aucun
	ClearAll(ctx context.Context, userID string) error
}

type EventPublisher interface {
	// PublishPrefetchRequested : fire-and-forget, ne doit jamais bloquer la lecture
	PublishPrefetchRequested(ctx context.Context, userID string, batchNumber int) error
}
