// Package repository implements resource persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/sentinel/internal/database"
	apperrors "github.com/allisson/sentinel/internal/errors"
	resourceDomain "github.com/allisson/sentinel/internal/resource/domain"
)

const resourceColumns = `id, resource_type, resource_id, owner_id, classification, compartments, created_at, updated_at`

// PostgreSQLResourceRepository implements resource persistence for PostgreSQL.
type PostgreSQLResourceRepository struct {
	db *sql.DB
}

// NewPostgreSQLResourceRepository creates a new PostgreSQLResourceRepository.
func NewPostgreSQLResourceRepository(db *sql.DB) *PostgreSQLResourceRepository {
	return &PostgreSQLResourceRepository{db: db}
}

// Create inserts a new resource.
func (p *PostgreSQLResourceRepository) Create(ctx context.Context, resource *resourceDomain.Resource) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO resources (` + resourceColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

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
func (p *PostgreSQLResourceRepository) Get(
	ctx context.Context,
	resourceType, resourceID string,
) (*resourceDomain.Resource, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE resource_type = $1 AND resource_id = $2`
	return scanResourceRow(querier.QueryRowContext(ctx, query, resourceType, resourceID))
}

// UpdateLabel persists the resource classification and compartments.
func (p *PostgreSQLResourceRepository) UpdateLabel(ctx context.Context, resource *resourceDomain.Resource) error {
	querier := database.GetTx(ctx, p.db)
	query := `UPDATE resources SET classification = $1, compartments = $2, updated_at = $3 WHERE id = $4`

	result, err := querier.ExecContext(ctx, query, resource.Classification, resource.Compartments,
		resource.UpdatedAt, resource.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update resource label")
	}
	return requireRow(result, resourceDomain.ErrResourceNotFound)
}

// UpdateOwner reassigns the owner with a compare-and-set on the current owner.
func (p *PostgreSQLResourceRepository) UpdateOwner(
	ctx context.Context,
	resourceType, resourceID string,
	fromOwner, toOwner uuid.UUID,
) error {
	querier := database.GetTx(ctx, p.db)
	query := `UPDATE resources SET owner_id = $1, updated_at = NOW()
			  WHERE resource_type = $2 AND resource_id = $3 AND owner_id = $4`

	result, err := querier.ExecContext(ctx, query, toOwner, resourceType, resourceID, fromOwner)
	if err != nil {
		return apperrors.Wrap(err, "failed to update resource owner")
	}
	return requireRow(result, resourceDomain.ErrOwnerChanged)
}

// ListByOwner lists resources owned by ownerID.
func (p *PostgreSQLResourceRepository) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*resourceDomain.Resource, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE owner_id = $1
			  ORDER BY created_at ASC LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list resources")
	}
	return scanResourceRows(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(row rowScanner) (*resourceDomain.Resource, error) {
	var resource resourceDomain.Resource
	err := row.Scan(&resource.ID, &resource.ResourceType, &resource.ResourceID, &resource.OwnerID,
		&resource.Classification, &resource.Compartments, &resource.CreatedAt, &resource.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

func scanResourceRow(row *sql.Row) (*resourceDomain.Resource, error) {
	resource, err := scanResource(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, resourceDomain.ErrResourceNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get resource")
	}
	return resource, nil
}

func scanResourceRows(rows *sql.Rows) ([]*resourceDomain.Resource, error) {
	defer rows.Close() //nolint:errcheck

	resources := make([]*resourceDomain.Resource, 0)
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan resource")
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate resources")
	}
	return resources, nil
}

func requireRow(result sql.Result, notMatched error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return notMatched
	}
	return nil
}
