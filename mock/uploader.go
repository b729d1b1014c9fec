package mock

import (
	"context"

	"github.com/fwojciec/chatgate"
)

// Interface compliance check.
var _ chatgate.Uploader = (*Uploader)(nil)

// Uploader is a test double for chatgate.Uploader.
// Set UploadFn before calling Upload.
type Uploader struct {
	UploadFn func(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Upload delegates to UploadFn.
func (u *Uploader) Upload(ctx context.Context, data []byte, mimeType string) (string, error) {
	return u.UploadFn(ctx, data, mimeType)
}
