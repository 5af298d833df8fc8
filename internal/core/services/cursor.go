package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jupiterclapton/reelfeed/internal/core/domain"
)

// Le curseur du feed recommandé encode "batch:offset". Il reste opaque pour
// le client, qui doit le renvoyer tel quel.

func EncodeBatchCursor(batchNumber, offset int) string {
	return fmt.Sprintf("%d:%d", batchNumber, offset)
}

func DecodeBatchCursor(cursor string) (batchNumber, offset int, err error) {
	if cursor == "" {
		return 0, 0, nil
	}
	left, right, found := strings.Cut(cursor, ":")
	if !found {
		return 0, 0, domain.ErrInvalidCursor
	}
	batchNumber, err = strconv.Atoi(left)
	if err != nil || batchNumber < 0 {
		return 0, 0, domain.ErrInvalidCursor
	}
	offset, err = strconv.Atoi(right)
	if err != nil || offset < 0 {
		return 0, 0, domain.ErrInvalidCursor
	}
	return batchNumber, offset, nil
}
