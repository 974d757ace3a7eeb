package chat

import (
	"context"

	"github.com/kailas-cloud/magicchat/internal/domain/search/query"
	"github.com/kailas-cloud/magicchat/internal/domain/search/result"
)

// Searcher executes a typed query against the card database.
type Searcher interface {
	Search(ctx context.Context, q query.Query) (result.Set, error)
}
