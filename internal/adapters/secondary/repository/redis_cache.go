package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jupiterclapton/reelfeed/internal/core/domain"
	"github.com/jupiterclapton/reelfeed/internal/core/ports"
)

// RedisBatchCache stocke chaque batch sous forme de liste Redis :
// RPUSH préserve l'ordre du ranking, LRANGE donne la lecture partielle,
// EXPIRE porte le TTL de session. Clé : "reco:{userID}:{batch}".
type RedisBatchCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisBatchCache(client *redis.Client, ttl time.Duration) ports.BatchCache {
	return &RedisBatchCache{client: client, ttl: ttl}
}

func batchKey(userID string, batchNumber int) string {
	return fmt.Sprintf("reco:%s:%d", userID, batchNumber)
}

// GetBatch : une liste absente ET une liste vide renvoient toutes deux une
// séquence vide — les deux valent miss pour l'appelant
func (r *RedisBatchCache) GetBatch(ctx context.Context, userID string, batchNumber int) ([]string, error) {
	return r.client.LRange(ctx, batchKey(userID, batchNumber), 0, -1).Result()
}

// PutBatch remplace le batch atomiquement (DEL + RPUSH + EXPIRE dans un
// pipeline transactionnel) et pose une expiration absolue
func (r *RedisBatchCache) PutBatch(ctx context.Context, userID string, batchNumber int, ids []string) error {
	if len(ids) == 0 {
		return domain.ErrEmptyBatch
	}

	key := batchKey(userID, batchNumber)
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.RPush(ctx, key, members...)
	pipe.Expire(ctx, key, r.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// GetRange : lecture partielle sans matérialiser le batch complet.
// LRANGE est inclusif des deux côtés, d'où le -1.
func (r *RedisBatchCache) GetRange(ctx context.Context, userID string, batchNumber, offset, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}
	start := int64(offset)
	stop := int64(offset + count - 1)
	return r.client.LRange(ctx, batchKey(userID, batchNumber), start, stop).Result()
}

func (r *RedisBatchCache) BatchSize(ctx context.Context, userID string, batchNumber int) (int, error) {
	n, err := r.client.LLen(ctx, batchKey(userID, batchNumber)).Result()
	return int(n), err
}

// ClearAll : SCAN par motif puis DEL groupé. Idempotent : zéro clé = succès.
// SCAN plutôt que KEYS pour ne pas bloquer Redis sur un gros keyspace.
func (r *RedisBatchCache) ClearAll(ctx context.Context, userID string) error {
	pattern := fmt.Sprintf("reco:%s:*", userID)
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}
