package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jupiterclapton/reelfeed/internal/core/domain"
	"github.com/jupiterclapton/reelfeed/internal/core/ports"
)

// Colonnes du résumé de contenu, partagées par toutes les requêtes du catalogue
const contentColumns = `id, creator_id, caption, media_url, thumbnail_url, created_at,
	view_count, like_count, save_count, share_count, comment_count`

// Prédicat d'éligibilité commun : publié et non soft-deleted
const eligible = `published = TRUE AND deleted_at IS NULL`

type PostgresCatalog struct {
	db  *pgxpool.Pool
	pop domain.PopularityWeights
}

func NewPostgresCatalog(db *pgxpool.Pool, pop domain.PopularityWeights) ports.ContentCatalog {
	return &PostgresCatalog{db: db, pop: pop}
}

// QueryRecent : PAGINATION KEYSET (curseur temporel), jamais de OFFSET.
// excludeIDs vide => ANY sur un tableau vide, le plan reste sain.
func (r *PostgresCatalog) QueryRecent(ctx context.Context, excludeIDs []string, before time.Time, limit int) ([]domain.ContentSummary, error) {
	if excludeIDs == nil {
		excludeIDs = []string{}
	}

	// Cas 1 : première page (pas de curseur)
	if before.IsZero() {
		query := fmt.Sprintf(`
			SELECT %s FROM contents
			WHERE %s AND NOT (id = ANY($1))
			ORDER BY created_at DESC
			LIMIT $2
		`, contentColumns, eligible)
		rows, err := r.db.Query(ctx, query, excludeIDs, limit)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return collectContents(rows)
	}

	// Cas 2 : page suivante (strictement plus vieux que le curseur)
	query := fmt.Sprintf(`
		SELECT %s FROM contents
		WHERE %s AND NOT (id = ANY($1)) AND created_at < $2
		ORDER BY created_at DESC
		LIMIT $3
	`, contentColumns, eligible)
	rows, err := r.db.Query(ctx, query, excludeIDs, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContents(rows)
}

// QueryByCreators : la variante "abonnements" — même keyset, prédicat créateur
func (r *PostgresCatalog) QueryByCreators(ctx context.Context, creatorIDs []string, before time.Time, limit int) ([]domain.ContentSummary, error) {
	if before.IsZero() {
		query := fmt.Sprintf(`
			SELECT %s FROM contents
			WHERE %s AND creator_id = ANY($1)
			ORDER BY created_at DESC
			LIMIT $2
		`, contentColumns, eligible)
		rows, err := r.db.Query(ctx, query, creatorIDs, limit)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return collectContents(rows)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM contents
		WHERE %s AND creator_id = ANY($1) AND created_at < $2
		ORDER BY created_at DESC
		LIMIT $3
	`, contentColumns, eligible)
	rows, err := r.db.Query(ctx, query, creatorIDs, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContents(rows)
}

// QueryPopular : score de popularité calculé en SQL, poids paramétrés
// (pas de constantes en dur dans la requête, les tests peuvent les faire varier)
func (r *PostgresCatalog) QueryPopular(ctx context.Context, excludeIDs []string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	if excludeIDs == nil {
		excludeIDs = []string{}
	}
	query := fmt.Sprintf(`
		SELECT id FROM contents
		WHERE %s AND NOT (id = ANY($1))
		ORDER BY view_count*$2 + like_count*$3 + comment_count*$4 + save_count*$5 + share_count*$6 DESC, id
		LIMIT $7
	`, eligible)
	rows, err := r.db.Query(ctx, query, excludeIDs,
		r.pop.View, r.pop.Like, r.pop.Comment, r.pop.Save, r.pop.Share, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIDs(rows)
}

func (r *PostgresCatalog) QueryNewest(ctx context.Context, excludeIDs []string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	if excludeIDs == nil {
		excludeIDs = []string{}
	}
	query := fmt.Sprintf(`
		SELECT id FROM contents
		WHERE %s AND NOT (id = ANY($1))
		ORDER BY created_at DESC
		LIMIT $2
	`, eligible)
	rows, err := r.db.Query(ctx, query, excludeIDs, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIDs(rows)
}

// QueryRandom : échantillon non ordonné. ORDER BY random() suffit à notre
// échelle ; TABLESAMPLE si le catalogue devient vraiment gros.
func (r *PostgresCatalog) QueryRandom(ctx context.Context, excludeIDs []string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	if excludeIDs == nil {
		excludeIDs = []string{}
	}
	query := fmt.Sprintf(`
		SELECT id FROM contents
		WHERE %s AND NOT (id = ANY($1))
		ORDER BY random()
		LIMIT $2
	`, eligible)
	rows, err := r.db.Query(ctx, query, excludeIDs, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIDs(rows)
}

// ByIDs : BATCH FETCH via ANY($1), un seul round-trip pour tout le set
func (r *PostgresCatalog) ByIDs(ctx context.Context, ids []string) (map[string]domain.ContentSummary, error) {
	result := make(map[string]domain.ContentSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	query := fmt.Sprintf(`
		SELECT %s FROM contents
		WHERE %s AND id = ANY($1)
	`, contentColumns, eligible)
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contents, err := collectContents(rows)
	if err != nil {
		return nil, err
	}
	for _, c := range contents {
		result[c.ID] = c
	}
	return result, nil
}

// CreatedAt résout un curseur (ID de contenu) en date de création
func (r *PostgresCatalog) CreatedAt(ctx context.Context, contentID string) (time.Time, error) {
	var createdAt time.Time
	err := r.db.QueryRow(ctx, `SELECT created_at FROM contents WHERE id = $1`, contentID).Scan(&createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, domain.ErrInvalidCursor
		}
		return time.Time{}, err
	}
	return createdAt, nil
}

func (r *PostgresCatalog) SubtitlesByContentIDs(ctx context.Context, contentIDs []string) (map[string][]domain.Subtitle, error) {
	result := make(map[string][]domain.Subtitle, len(contentIDs))
	if len(contentIDs) == 0 {
		return result, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT content_id, language, url FROM subtitles WHERE content_id = ANY($1)
	`, contentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var contentID string
		var sub domain.Subtitle
		if err := rows.Scan(&contentID, &sub.Language, &sub.URL); err != nil {
			return nil, err
		}
		result[contentID] = append(result[contentID], sub)
	}
	return result, rows.Err()
}

// --- Helpers de scan (évitent la duplication entre requêtes) ---

func collectContents(rows pgx.Rows) ([]domain.ContentSummary, error) {
	var contents []domain.ContentSummary
	for rows.Next() {
		var c domain.ContentSummary
		if err := rows.Scan(
			&c.ID, &c.CreatorID, &c.Caption, &c.MediaURL, &c.ThumbnailURL, &c.CreatedAt,
			&c.Counters.Views, &c.Counters.Likes, &c.Counters.Saves,
			&c.Counters.Shares, &c.Counters.Comments,
		); err != nil {
			return nil, err
		}
		contents = append(contents, c)
	}
	return contents, rows.Err()
}

func collectIDs(rows pgx.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- Annuaire utilisateurs (profils créateurs) ---

type PostgresUserDirectory struct {
	db *pgxpool.Pool
}

func NewPostgresUserDirectory(db *pgxpool.Pool) ports.UserDirectory {
	return &PostgresUserDirectory{db: db}
}

func (r *PostgresUserDirectory) ProfilesByIDs(ctx context.Context, userIDs []string) (map[string]domain.CreatorProfile, error) {
	result := make(map[string]domain.CreatorProfile, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, handle, display_name, avatar_url FROM users WHERE id = ANY($1)
	`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.CreatorProfile
		if err := rows.Scan(&p.ID, &p.Handle, &p.DisplayName, &p.AvatarURL); err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	return result, rows.Err()
}
