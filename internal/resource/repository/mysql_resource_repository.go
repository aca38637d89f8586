package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
	resourceDomain "github.com/allisson/sentinel/internal/resource/domain"
)

// MySQLResourceRepository implements resource persistence for MySQL.
type MySQLResourceRepository struct {
	db *sql.DB
}

// NewMySQLResourceRepository creates a new MySQLResourceRepository.
func NewMySQLResourceRepository(db *sql.DB) *MySQLResourceRepository {
	return &MySQLResourceRepository{db: db}
}

// Create inserts a new resource.
func (m *MySQLResourceRepository) Create(ctx context.Context, resource *resourceDomain.Resource) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO resources (` + resourceColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, resource.ID, resource.ResourceType, resource.ResourceID,
		resource.OwnerID, resource.Classification, resource.Compartments, resource.CreatedAt, resource.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return resourceDomain.ErrResourceAlreadyRegistered
		}
		return apperrors.Wrap(err, "failed to create resource")
	}
	return nil
}

// Get retrieves a resource by type and id.
func (m *MySQLResourceRepository) Get(
	ctx context.Context,
	resourceType, resourceID string,
) (*resourceDomain.Resource, error) {
	querier := database.GetTx(ctx, m.db)
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE resource_type = ? AND resource_id = ?`
	return scanResourceRow(querier.QueryRowContext(ctx, query, resourceType, resourceID))
}

// UpdateLabel persists the resource classification and compartments.
func (m *MySQLResourceRepository) UpdateLabel(ctx context.Context, resource *resourceDomain.Resource) error {
	querier := database.GetTx(ctx, m.db)
	query := `UPDATE resources SET classification = ?, compartments = ?, updated_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, resource.Classification, resource.Compartments,
		resource.UpdatedAt, resource.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update resource label")
	}
	return requireRow(result, resourceDomain.ErrResourceNotFound)
}

// UpdateOwner reassigns the owner with a compare-and-set on the current owner.
func (m *MySQLResourceRepository) UpdateOwner(
	ctx context.Context,
	resourceType, resourceID string,
	fromOwner, toOwner uuid.UUID,
) error {
	querier := database.GetTx(ctx, m.db)
	query := `UPDATE resources SET owner_id = ?, updated_at = NOW(6)
			  WHERE resource_type = ? AND resource_id = ? AND owner_id = ?`

	result, err := querier.ExecContext(ctx, query, toOwner, resourceType, resourceID, fromOwner)
	if err != nil {
		return apperrors.Wrap(err, "failed to update resource owner")
	}
	return requireRow(result, resourceDomain.ErrOwnerChanged)
}

// ListByOwner lists resources owned by ownerID.
func (m *MySQLResourceRepository) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*resourceDomain.Resource, error) {
	querier := database.GetTx(ctx, m.db)
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE owner_id = ?
			  ORDER BY created_at ASC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list resources")
	}
	return scanResourceRows(rows)
}
