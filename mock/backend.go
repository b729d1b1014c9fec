// Package mock provides test doubles for chatgate interfaces using function
// fields.
package mock

import (
	"context"

	"github.com/fwojciec/chatgate"
)

// Interface compliance check.
var _ chatgate.Backend = (*Backend)(nil)

// Backend is a test double for chatgate.Backend.
// Set GenerateFn before calling Generate.
type Backend struct {
	GenerateFn func(ctx context.Context, history []chatgate.Turn, turn chatgate.Turn) (chatgate.Reply, error)
}

// Generate delegates to GenerateFn.
func (b *Backend) Generate(ctx context.Context, history []chatgate.Turn, turn chatgate.Turn) (chatgate.Reply, error) {
	return b.GenerateFn(ctx, history, turn)
}
