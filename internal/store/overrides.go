package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BlockchainHB/launchfast-sub005/internal/contracts"
)

// OverrideRepository persists product overrides. The tri-state field
// payload lives in a jsonb column; the (user_id, product_id) uniqueness
// constraint is what makes the upsert atomic and idempotent.
type OverrideRepository struct {
	pool *pgxpool.Pool
}

// NewOverrideRepository creates a new override repository
func NewOverrideRepository(pool *pgxpool.Pool) *OverrideRepository {
	return &OverrideRepository{pool: pool}
}

// Upsert writes an override, replacing any existing row for the same
// (user, product) pair. Applying the same payload twice yields one row.
func (r *OverrideRepository) Upsert(ctx context.Context, override *contracts.ProductOverride) (*contracts.ProductOverride, error) {
	payload, err := json.Marshal(override)
	if err != nil {
		return nil, fmt.Errorf("encode override: %w", err)
	}

	query := `
		INSERT INTO research.product_overrides
			(user_id, product_id, asin, reason, fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET
			asin = EXCLUDED.asin,
			reason = EXCLUDED.reason,
			fields = EXCLUDED.fields,
			updated_at = now()
		RETURNING user_id, product_id, asin, reason, fields, created_at, updated_at`

	row := r.pool.QueryRow(ctx, query,
		override.UserID, override.ProductID, override.ASIN, override.Reason, payload,
	)

	saved, err := scanOverride(row)
	if err != nil {
		return nil, fmt.Errorf("upsert override: %w", err)
	}
	return saved, nil
}

// Get fetches the override for a (user, product) pair
func (r *OverrideRepository) Get(ctx context.Context, userID, productID string) (*contracts.ProductOverride, error) {
	query := `
		SELECT user_id, product_id, asin, reason, fields, created_at, updated_at
		FROM research.product_overrides
		WHERE user_id = $1 AND product_id = $2`

	row := r.pool.QueryRow(ctx, query, userID, productID)
	ov, err := scanOverride(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contracts.NewNotFoundError("override", userID+"/"+productID)
		}
		return nil, fmt.Errorf("get override: %w", err)
	}
	return ov, nil
}

// GetForProducts fetches a user's overrides for a set of products,
// keyed by product id. Products without an override are simply absent.
func (r *OverrideRepository) GetForProducts(ctx context.Context, userID string, productIDs []string) (map[string]*contracts.ProductOverride, error) {
	out := make(map[string]*contracts.ProductOverride)
	if len(productIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT user_id, product_id, asin, reason, fields, created_at, updated_at
		FROM research.product_overrides
		WHERE user_id = $1 AND product_id = ANY($2)`

	rows, err := r.pool.Query(ctx, query, userID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("get overrides for products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		ov, err := scanOverride(rows)
		if err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		out[ov.ProductID] = ov
	}

	return out, rows.Err()
}

// Delete removes a user's override for one product
func (r *OverrideRepository) Delete(ctx context.Context, userID, productID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM research.product_overrides WHERE user_id = $1 AND product_id = $2`,
		userID, productID,
	)
	if err != nil {
		return fmt.Errorf("delete override: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return contracts.NewNotFoundError("override", userID+"/"+productID)
	}
	return nil
}

func scanOverride(row pgx.Row) (*contracts.ProductOverride, error) {
	var userID, productID, asin, reason string
	var fields []byte
	var ov contracts.ProductOverride

	err := row.Scan(&userID, &productID, &asin, &reason, &fields, &ov.CreatedAt, &ov.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(fields) > 0 {
		createdAt, updatedAt := ov.CreatedAt, ov.UpdatedAt
		if err := json.Unmarshal(fields, &ov); err != nil {
			return nil, fmt.Errorf("decode override fields: %w", err)
		}
		ov.CreatedAt, ov.UpdatedAt = createdAt, updatedAt
	}

	// Column values win over whatever the payload carried
	ov.UserID = userID
	ov.ProductID = productID
	ov.ASIN = asin
	ov.Reason = reason

	return &ov, nil
}
