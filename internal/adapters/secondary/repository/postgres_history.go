package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jupiterclapton/reelfeed/internal/core/domain"
	"github.com/jupiterclapton/reelfeed/internal/core/ports"
)

// PostgresHistory lit l'historique d'interactions et l'historique de
// visionnage. Lecture seule ici : l'écriture appartient au domaine
// interactions, pas au moteur de feed.
type PostgresHistory struct {
	db *pgxpool.Pool
}

func NewPostgresHistory(db *pgxpool.Pool) ports.InteractionHistory {
	return &PostgresHistory{db: db}
}

func (r *PostgresHistory) RecentInteractions(ctx context.Context, userID string, limit int) ([]domain.InteractionRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, content_id, kind, created_at
		FROM interactions
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.InteractionRecord
	for rows.Next() {
		var rec domain.InteractionRecord
		if err := rows.Scan(&rec.UserID, &rec.ContentID, &rec.Kind, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UsersWhoInteracted : kind = KindAny pour tous types confondus.
// DISTINCT côté SQL : un utilisateur qui a liké ET partagé ne compte qu'une fois.
func (r *PostgresHistory) UsersWhoInteracted(ctx context.Context, contentID string, kind domain.InteractionKind, limit int) ([]string, error) {
	query := `
		SELECT DISTINCT user_id FROM interactions
		WHERE content_id = $1 AND deleted_at IS NULL
		LIMIT $2
	`
	args := []any{contentID, limit}
	if kind != domain.KindAny {
		query = `
			SELECT DISTINCT user_id FROM interactions
			WHERE content_id = $1 AND kind = $3 AND deleted_at IS NULL
			LIMIT $2
		`
		args = append(args, kind)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIDs(rows)
}

func (r *PostgresHistory) RecentlyViewed(ctx context.Context, userID string, limit int) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT content_id FROM content_views
		WHERE user_id = $1
		ORDER BY viewed_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIDs(rows)
}
