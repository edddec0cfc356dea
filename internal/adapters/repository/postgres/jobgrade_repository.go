package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/payroll-api/internal/core/jobgrade"
	pgdb "github.com/ogurasousui/payroll-api/internal/platform/db/postgres"
)

// JobGradeRepository は PostgreSQL を利用した等級参照の実装です。
type JobGradeRepository struct {
	pool pgdb.Queryer
}

var _ jobgrade.Repository = (*JobGradeRepository)(nil)

// NewJobGradeRepository は JobGradeRepository を生成します。
func NewJobGradeRepository(pool pgdb.Queryer) *JobGradeRepository {
	return &JobGradeRepository{pool: pool}
}

// List は等級を給与レンジの低い順に取得します。
func (r *JobGradeRepository) List(ctx context.Context) ([]*jobgrade.JobGrade, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(pgdb.WithQueryName(ctx, "job_grades.list"), `
        SELECT id, name, description, min_salary, max_salary, created_at
          FROM job_grades
         ORDER BY min_salary ASC, id ASC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grades := make([]*jobgrade.JobGrade, 0)
	for rows.Next() {
		g, err := scanJobGrade(rows)
		if err != nil {
			return nil, err
		}
		grades = append(grades, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return grades, nil
}

// FindByID は ID で等級を取得します。存在しない場合は NotFound エラーを返します。
func (r *JobGradeRepository) FindByID(ctx context.Context, id int64) (*jobgrade.JobGrade, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(pgdb.WithQueryName(ctx, "job_grades.find_by_id"), `
        SELECT id, name, description, min_salary, max_salary, created_at
          FROM job_grades
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanJobGrade(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, jobgrade.NewNotFound(id)
		}
		return nil, err
	}
	return found, nil
}

func scanJobGrade(row pgx.Row) (*jobgrade.JobGrade, error) {
	var (
		g           jobgrade.JobGrade
		description sql.NullString
	)

	if err := row.Scan(&g.ID, &g.Name, &description, &g.MinSalary, &g.MaxSalary, &g.CreatedAt); err != nil {
		return nil, err
	}

	if description.Valid {
		v := description.String
		g.Description = &v
	}
	return &g, nil
}
