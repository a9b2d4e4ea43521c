package factors

import "context"

// Repository defines data access for emission factors.
type Repository interface {
	// ListVisible returns central rows plus every row owned by orgID.
	ListVisible(ctx context.Context, orgID string) ([]Factor, error)

	// GetByID returns a row or apperror NotFound.
	GetByID(ctx context.Context, id int64) (*Factor, error)

	// FindOverride returns the org's override of a central factor, or nil when none exists.
	FindOverride(ctx context.Context, orgID string, originalFactorID int64) (*Factor, error)

	// Create inserts a row and sets its ID. A second override of the same
	// central factor for one org fails with apperror Duplicate.
	Create(ctx context.Context, f *Factor) error

	// Update overwrites the value fields of an existing row.
	Update(ctx context.Context, f *Factor) error

	// Delete removes a row owned by orgID.
	Delete(ctx context.Context, orgID string, id int64) error
}
