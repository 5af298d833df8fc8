package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jupiterclapton/reelfeed/internal/core/domain"
)

func scorerConfig() domain.RecommendationConfig {
	cfg := domain.DefaultRecommendationConfig()
	cfg.MaxSeedItems = 10
	cfg.MaxSimilarUsersPerItem = 10
	cfg.MaxItemsPerSimilarUser = 10
	return cfg
}

func TestScoreSharesOutrankLikes(t *testing.T) {
	history := newFakeHistory()
	// U a liké A et sauvegardé B
	history.addInteraction("U", "A", domain.KindLike)
	history.addInteraction("U", "B", domain.KindSave)
	// N1 (voisin via A) a partagé C ; N2 (voisin via B) a liké D
	history.addInteraction("N1", "A", domain.KindLike)
	history.addInteraction("N1", "C", domain.KindShare)
	history.addInteraction("N2", "B", domain.KindLike)
	history.addInteraction("N2", "D", domain.KindLike)

	scorer := NewCollaborativeScorer(history, scorerConfig())
	ids, err := scorer.Score(t.Context(), "U", 10)
	require.NoError(t, err)

	// SHARE (2.0) doit classer C devant D qui n'a qu'un LIKE (1.0)
	assert.Equal(t, []string{"C", "D"}, ids)
}

func TestScoreEmptyHistoryIsNotAnError(t *testing.T) {
	scorer := NewCollaborativeScorer(newFakeHistory(), scorerConfig())
	ids, err := scorer.Score(t.Context(), "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestScoreNoNeighbors(t *testing.T) {
	history := newFakeHistory()
	// U est le seul à avoir touché A
	history.addInteraction("U", "A", domain.KindLike)

	scorer := NewCollaborativeScorer(history, scorerConfig())
	ids, err := scorer.Score(t.Context(), "U", 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestScoreExcludesSeedContents(t *testing.T) {
	history := newFakeHistory()
	history.addInteraction("U", "A", domain.KindLike)
	// N1 a interagi avec A (seed de U) et avec C
	history.addInteraction("N1", "A", domain.KindShare)
	history.addInteraction("N1", "C", domain.KindLike)

	scorer := NewCollaborativeScorer(history, scorerConfig())
	ids, err := scorer.Score(t.Context(), "U", 10)
	require.NoError(t, err)

	// A ne doit jamais être re-proposé, même avec un gros score
	assert.Equal(t, []string{"C"}, ids)
}

func TestScoreDropsCommentOnlyCandidates(t *testing.T) {
	history := newFakeHistory()
	history.addInteraction("U", "A", domain.KindLike)
	history.addInteraction("N1", "A", domain.KindLike)
	history.addInteraction("N1", "E", domain.KindComment)
	history.addInteraction("N1", "C", domain.KindLike)

	scorer := NewCollaborativeScorer(history, scorerConfig())
	ids, err := scorer.Score(t.Context(), "U", 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"C"}, ids)
	assert.NotContains(t, ids, "E")
}

func TestScoreDeterministicTieBreak(t *testing.T) {
	history := newFakeHistory()
	history.addInteraction("U", "A", domain.KindLike)
	history.addInteraction("N1", "A", domain.KindLike)
	// Trois candidats à score identique (1 LIKE chacun)
	history.addInteraction("N1", "Z", domain.KindLike)
	history.addInteraction("N1", "M", domain.KindLike)
	history.addInteraction("N1", "B", domain.KindLike)

	scorer := NewCollaborativeScorer(history, scorerConfig())

	first, err := scorer.Score(t.Context(), "U", 10)
	require.NoError(t, err)
	second, err := scorer.Score(t.Context(), "U", 10)
	require.NoError(t, err)

	// Ex æquo départagés par ID, et reproductible entre deux appels
	assert.Equal(t, []string{"B", "M", "Z"}, first)
	assert.Equal(t, first, second)
}

func TestScoreTruncatesToLimit(t *testing.T) {
	history := newFakeHistory()
	history.addInteraction("U", "A", domain.KindLike)
	history.addInteraction("N1", "A", domain.KindLike)
	history.addInteraction("N1", "C1", domain.KindShare)
	history.addInteraction("N1", "C2", domain.KindSave)
	history.addInteraction("N1", "C3", domain.KindLike)

	scorer := NewCollaborativeScorer(history, scorerConfig())
	ids, err := scorer.Score(t.Context(), "U", 2)
	require.NoError(t, err)

	// Tri par poids décroissant : SHARE > SAVE, puis troncature
	assert.Equal(t, []string{"C1", "C2"}, ids)
}

func TestScorePropagatesFetchFailure(t *testing.T) {
	history := newFakeHistory()
	history.errRecent = errors.New("connection refused")

	scorer := NewCollaborativeScorer(history, scorerConfig())
	_, err := scorer.Score(t.Context(), "U", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collaborative scorer")
}
