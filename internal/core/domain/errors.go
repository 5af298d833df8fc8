package domain

import "errors"

var (
	// ErrInvalidCursor : le curseur fourni ne référence aucun contenu connu
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrEmptyBatch : refus de persister un batch vide (un batch vide = un miss)
	ErrEmptyBatch = errors.New("empty recommendation batch")
)
