package attachments

import "context"

type Repository interface {
	Create(ctx context.Context, a Attachment) error
	// Orden: created_at desc.
	ListByRequest(ctx context.Context, requestID string) ([]Attachment, error)
}
