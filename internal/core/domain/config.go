package domain

import "time"

// InteractionWeights pondère chaque type d'interaction pour le scoring collaboratif.
// COMMENT reste à 0 : un commentaire n'est pas un signal d'appréciation fiable.
type InteractionWeights struct {
	Like    float64
	Save    float64
	Share   float64
	Comment float64
}

func (w InteractionWeights) For(kind InteractionKind) float64 {
	switch kind {
	case KindLike:
		return w.Like
	case KindSave:
		return w.Save
	case KindShare:
		return w.Share
	case KindComment:
		return w.Comment
	default:
		return 0
	}
}

// PopularityWeights pondère les compteurs agrégés pour le tri "populaire".
// Les poids sont passés en paramètres SQL, pas codés en dur dans la requête.
type PopularityWeights struct {
	View    float64
	Like    float64
	Comment float64
	Save    float64
	Share   float64
}

// RecommendationConfig regroupe toutes les constantes de tuning du moteur.
// Struct immuable injectée à la construction : les tests peuvent la faire varier
// sans toucher à des globales.
type RecommendationConfig struct {
	// Bornes du scoring collaboratif (item-based CF)
	MaxSeedItems           int
	MaxSimilarUsersPerItem int
	MaxItemsPerSimilarUser int

	Weights    InteractionWeights
	Popularity PopularityWeights

	// Quotas du blender (doivent sommer à 1.0)
	CollaborativeShare float64
	PopularityShare    float64
	RecencyShare       float64
	RandomShare        float64

	// Cache de batchs précalculés
	BatchSize         int
	BatchTTL          time.Duration
	PrefetchThreshold float64

	// Taille de la fenêtre "vu récemment" servant de set d'exclusion
	ExclusionWindow int
}

// DefaultRecommendationConfig : les valeurs de prod.
// BatchSize 250 = ~12 pages de 20 items avant recalcul ; TTL 30 min ~ durée de session.
func DefaultRecommendationConfig() RecommendationConfig {
	return RecommendationConfig{
		MaxSeedItems:           100,
		MaxSimilarUsersPerItem: 50,
		MaxItemsPerSimilarUser: 20,
		Weights: InteractionWeights{
			Like:    1.0,
			Save:    1.5,
			Share:   2.0,
			Comment: 0.0,
		},
		Popularity: PopularityWeights{
			View:    1.0,
			Like:    5.0,
			Comment: 3.0,
			Save:    7.0,
			Share:   10.0,
		},
		CollaborativeShare: 0.4,
		PopularityShare:    0.3,
		RecencyShare:       0.1,
		RandomShare:        0.2,
		BatchSize:          250,
		BatchTTL:           30 * time.Minute,
		PrefetchThreshold:  0.5,
		ExclusionWindow:    100,
	}
}
