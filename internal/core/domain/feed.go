package domain

import "time"

type InteractionKind string

const (
	KindLike    InteractionKind = "LIKE"
	KindSave    InteractionKind = "SAVE"
	KindShare   InteractionKind = "SHARE"
	KindComment InteractionKind = "COMMENT"

	// KindAny sert de joker pour les requêtes "tous types confondus"
	KindAny InteractionKind = ""
)

// InteractionRecord est un fait historique : jamais muté après écriture
type InteractionRecord struct {
	UserID    string
	ContentID string
	Kind      InteractionKind
	CreatedAt time.Time
}

type Counters struct {
	Views    int64
	Likes    int64
	Saves    int64
	Shares   int64
	Comments int64
}

type Subtitle struct {
	Language string
	URL      string
}

type CreatorProfile struct {
	ID          string
	Handle      string
	DisplayName string
	AvatarURL   string
}

// ContentSummary est un snapshot en lecture seule du catalogue.
// Subtitles et Creator sont hydratés en batch par le FeedService,
// jamais en round-trip unitaire (piège N+1 classique).
type ContentSummary struct {
	ID           string
	CreatorID    string
	Caption      string
	MediaURL     string
	ThumbnailURL string
	CreatedAt    time.Time
	Counters     Counters
	Subtitles    []Subtitle
	Creator      *CreatorProfile
}

// FeedPage est construite par requête, sans identité persistante.
// NextCursor vide <=> pas de page suivante.
type FeedPage struct {
	Items      []ContentSummary
	NextCursor string
	HasNext    bool
}
