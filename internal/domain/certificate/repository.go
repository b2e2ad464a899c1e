package certificate

import "context"

type Repository interface {
	Create(ctx context.Context, r *Request) error
	GetByRequestID(ctx context.Context, requestID string) (*Request, error)
	GetView(ctx context.Context, requestID string) (*View, error)
	// Query returns the requested window and the total number of matching rows.
	Query(ctx context.Context, c Criteria) ([]View, int64, error)

	// CompareAndSetStatus applies p only if the stored status still equals expected.
	// It fails with *ConflictError when the status moved, ErrNotFound when the row is gone.
	CompareAndSetStatus(ctx context.Context, requestID string, expected Status, p Patch) error
	// UpdateReason edits the reason of a request owned by ownerID while it is pending.
	UpdateReason(ctx context.Context, requestID, ownerID, reason string) error
	// DeleteIfStatus hard-deletes the request only while its status equals expected.
	DeleteIfStatus(ctx context.Context, requestID string, expected Status) error
}
