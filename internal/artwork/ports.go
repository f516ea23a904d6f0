package artwork

import (
	"context"

	"arttimeline/internal/platform/metmuseum"
)

// Remote is the outbound collection API. *metmuseum.Client satisfies it.
type Remote interface {
	Search(ctx context.Context, query string, hasImages bool) (*metmuseum.SearchResult, error)
	Object(ctx context.Context, id int) (*metmuseum.Object, error)
}
