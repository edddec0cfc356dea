package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/payroll-api/internal/core/department"
	pgdb "github.com/ogurasousui/payroll-api/internal/platform/db/postgres"
)

// DepartmentRepository は PostgreSQL を利用した部署参照の実装です。
type DepartmentRepository struct {
	pool pgdb.Queryer
}

var _ department.Repository = (*DepartmentRepository)(nil)

// NewDepartmentRepository は DepartmentRepository を生成します。
func NewDepartmentRepository(pool pgdb.Queryer) *DepartmentRepository {
	return &DepartmentRepository{pool: pool}
}

// List は部署を名前順に取得します。
func (r *DepartmentRepository) List(ctx context.Context) ([]*department.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(pgdb.WithQueryName(ctx, "departments.list"), `
        SELECT id, name, description, created_at, updated_at
          FROM departments
         ORDER BY name ASC, id ASC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	departments := make([]*department.Department, 0)
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return departments, nil
}

// FindByID は ID で部署を取得します。存在しない場合は NotFound エラーを返します。
func (r *DepartmentRepository) FindByID(ctx context.Context, id int64) (*department.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(pgdb.WithQueryName(ctx, "departments.find_by_id"), `
        SELECT id, name, description, created_at, updated_at
          FROM departments
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanDepartment(row)
	if err != nil {
		return nil, translateDepartmentPgError(err, id)
	}
	return found, nil
}

func scanDepartment(row pgx.Row) (*department.Department, error) {
	var (
		d           department.Department
		description sql.NullString
		updatedAt   sql.NullTime
	)

	if err := row.Scan(&d.ID, &d.Name, &description, &d.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}

	if description.Valid {
		v := description.String
		d.Description = &v
	}
	if updatedAt.Valid {
		t := updatedAt.Time.In(time.UTC)
		d.UpdatedAt = &t
	}
	return &d, nil
}

func translateDepartmentPgError(err error, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return department.NewNotFound(id)
	}
	return err
}
