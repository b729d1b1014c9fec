package mock

import (
	"context"

	"github.com/fwojciec/chatgate"
)

// Interface compliance check.
var _ chatgate.Normalizer = (*Normalizer)(nil)

// Normalizer is a test double for chatgate.Normalizer.
// Set NormalizeFn before calling Normalize.
type Normalizer struct {
	NormalizeFn func(ctx context.Context, img chatgate.Image) (chatgate.ImagePart, error)
}

// Normalize delegates to NormalizeFn.
func (n *Normalizer) Normalize(ctx context.Context, img chatgate.Image) (chatgate.ImagePart, error) {
	return n.NormalizeFn(ctx, img)
}
