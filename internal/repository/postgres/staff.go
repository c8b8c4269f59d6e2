package postgres

import (
	"context"
	"fmt"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/domain"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/database"
	apperrors "github.com/metalofmeat1/telegram-bot-for-selling/pkg/errors"
)

// StaffRepository implements repository.StaffRepository using PostgreSQL.
// Each operation is one statement, so concurrent edits never lose updates.
type StaffRepository struct {
	pool database.DBTX
}

// NewStaffRepository creates a new PostgreSQL-backed staff registry.
func NewStaffRepository(pool database.DBTX) *StaffRepository {
	return &StaffRepository{pool: pool}
}

func checkRole(role domain.StaffRole) error {
	if !role.IsValid() {
		return apperrors.InvalidInput(fmt.Sprintf("unknown staff role %q", role))
	}
	return nil
}

// Add registers telegramID under role. It returns false when the id was
// already registered.
func (r *StaffRepository) Add(ctx context.Context, role domain.StaffRole, telegramID int64) (_ bool, err error) {
	if err := checkRole(role); err != nil {
		return false, err
	}

	query := `
		INSERT INTO staff (telegram_id, role)
		VALUES ($1, $2)
		ON CONFLICT (telegram_id, role) DO NOTHING`

	ctx, end := database.TraceQuery(ctx, "AddStaff", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, telegramID, string(role))
	if err != nil {
		return false, fmt.Errorf("add %s: %w", role, err)
	}

	return ct.RowsAffected() == 1, nil
}

// Remove unregisters telegramID from role. It returns false when the id was
// not registered.
func (r *StaffRepository) Remove(ctx context.Context, role domain.StaffRole, telegramID int64) (_ bool, err error) {
	if err := checkRole(role); err != nil {
		return false, err
	}

	query := `DELETE FROM staff WHERE telegram_id = $1 AND role = $2`

	ctx, end := database.TraceQuery(ctx, "RemoveStaff", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, telegramID, string(role))
	if err != nil {
		return false, fmt.Errorf("remove %s: %w", role, err)
	}

	return ct.RowsAffected() > 0, nil
}

// Contains reports whether telegramID is registered under role.
func (r *StaffRepository) Contains(ctx context.Context, role domain.StaffRole, telegramID int64) (_ bool, err error) {
	if err := checkRole(role); err != nil {
		return false, err
	}

	query := `SELECT EXISTS (SELECT 1 FROM staff WHERE telegram_id = $1 AND role = $2)`

	ctx, end := database.TraceQuery(ctx, "ContainsStaff", query)
	defer func() { end(err) }()

	var exists bool
	if err = r.pool.QueryRow(ctx, query, telegramID, string(role)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s: %w", role, err)
	}

	return exists, nil
}

// List returns the ids registered under role in insertion order.
func (r *StaffRepository) List(ctx context.Context, role domain.StaffRole) (_ []int64, err error) {
	if err := checkRole(role); err != nil {
		return nil, err
	}

	query := `SELECT telegram_id FROM staff WHERE role = $1 ORDER BY id`

	ctx, end := database.TraceQuery(ctx, "ListStaff", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", role, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s: %w", role, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", role, err)
	}

	return ids, nil
}
