package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/payroll-api/internal/core/employee"
	pgdb "github.com/ogurasousui/payroll-api/internal/platform/db/postgres"
)

const (
	salaryRecordsByEmployeesSQL = "SELECT s.id, s.employee_id, s.base_salary, s.effective_date, s.reason" +
		" FROM salary_records s WHERE s.employee_id = ANY($1)" +
		" ORDER BY s.employee_id, s.effective_date DESC, s.id DESC"
	absenceRecordsByEmployeesSQL = "SELECT a.id, a.employee_id, a.year, a.month, a.absence_days, a.deduction_amount" +
		" FROM absence_records a WHERE a.employee_id = ANY($1)" +
		" ORDER BY a.employee_id, a.year DESC, a.month DESC, a.id DESC"
)

// EmployeeRepository は PostgreSQL を利用した社員参照クエリの実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

var _ employee.Repository = (*EmployeeRepository)(nil)

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// ListWithDetails は条件に一致する社員を氏名順に 1 ページ分取得します。部署・等級・給与履歴を付与します。
func (r *EmployeeRepository) ListWithDetails(ctx context.Context, filter employee.Filter, page employee.Page) ([]*employee.Employee, error) {
	q := newEmployeeQuery(includeWithSalary).
		applyFilter(filter).
		order(orderByName).
		paginate(page)
	return r.list(ctx, "employees.list_with_details", q)
}

// Count は条件に一致する社員数を返します。
func (r *EmployeeRepository) Count(ctx context.Context, filter employee.Filter) (int, error) {
	return r.count(ctx, "employees.count", newEmployeeQuery(employeeIncludes{}).applyFilter(filter))
}

// GetWithDetails は ID で社員を取得します。存在しない場合は NotFound エラーを返します。
func (r *EmployeeRepository) GetWithDetails(ctx context.Context, id int64) (*employee.Employee, error) {
	emp, err := r.FindWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, employee.NewNotFound(id)
	}
	return emp, nil
}

// FindWithDetails は ID で社員を取得します。存在しない場合は nil を返します。
func (r *EmployeeRepository) FindWithDetails(ctx context.Context, id int64) (*employee.Employee, error) {
	return r.find(ctx, "employees.find_with_details", newEmployeeQuery(includeAll).whereID(id))
}

// ListAllWithDetails は全社員を氏名順に、すべての関連付きで取得します。
func (r *EmployeeRepository) ListAllWithDetails(ctx context.Context) ([]*employee.Employee, error) {
	return r.list(ctx, "employees.list_all_with_details", newEmployeeQuery(includeAll).order(orderByName))
}

// ListByDepartment は部署に所属する社員を等級付きで取得します。
func (r *EmployeeRepository) ListByDepartment(ctx context.Context, departmentID int64) ([]*employee.Employee, error) {
	q := newEmployeeQuery(employeeIncludes{jobGrade: true}).
		whereDepartment(departmentID).
		order(orderByName)
	return r.list(ctx, "employees.list_by_department", q)
}

// ListByJobGrade は等級に属する社員を部署付きで取得します。
func (r *EmployeeRepository) ListByJobGrade(ctx context.Context, jobGradeID int64) ([]*employee.Employee, error) {
	q := newEmployeeQuery(employeeIncludes{department: true}).
		whereJobGrade(jobGradeID).
		order(orderByName)
	return r.list(ctx, "employees.list_by_job_grade", q)
}

// ListActive は在籍中の社員を取得します。
func (r *EmployeeRepository) ListActive(ctx context.Context) ([]*employee.Employee, error) {
	q := newEmployeeQuery(includeSummary).order(orderByName)
	q.where("e.status = " + q.bind(string(employee.StatusActive)))
	return r.list(ctx, "employees.list_active", q)
}

// FindByEmployeeNumber は社員番号で社員を取得します。
func (r *EmployeeRepository) FindByEmployeeNumber(ctx context.Context, employeeNumber string) (*employee.Employee, error) {
	q := newEmployeeQuery(includeWithSalary)
	q.where("e.employee_number = " + q.bind(employeeNumber))
	return r.find(ctx, "employees.find_by_employee_number", q)
}

// IsEmployeeNumberUnique は社員番号が他の社員に使われていなければ true を返します。
func (r *EmployeeRepository) IsEmployeeNumberUnique(ctx context.Context, employeeNumber string, excludeID *int64) (bool, error) {
	q := newEmployeeQuery(employeeIncludes{})
	q.where("e.employee_number = " + q.bind(employeeNumber)).whereNotID(excludeID)

	exists, err := r.exists(ctx, "employees.employee_number_exists", q)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// IsDuplicateEmail はメールアドレスが他の社員に使われていれば true を返します。
func (r *EmployeeRepository) IsDuplicateEmail(ctx context.Context, email string, excludeID *int64) (bool, error) {
	q := newEmployeeQuery(employeeIncludes{})
	q.where("e.email = " + q.bind(email)).whereNotID(excludeID)
	return r.exists(ctx, "employees.email_exists", q)
}

// FindDeleted は論理削除済みの社員を ID で取得します。
func (r *EmployeeRepository) FindDeleted(ctx context.Context, id int64) (*employee.Employee, error) {
	q := newEmployeeQuery(employeeIncludes{}).
		withDeletedRows().
		whereID(id).
		where("e.is_deleted = TRUE")
	return r.find(ctx, "employees.find_deleted", q)
}

// ListRecent は登録日時の新しい順に count 件を取得します。
func (r *EmployeeRepository) ListRecent(ctx context.Context, count int) ([]*employee.Employee, error) {
	q := newEmployeeQuery(includeSummary).
		order(orderByRecent).
		take(count)
	return r.list(ctx, "employees.list_recent", q)
}

// CountByDepartment は部署に所属する社員数を返します。
func (r *EmployeeRepository) CountByDepartment(ctx context.Context, departmentID int64) (int, error) {
	return r.count(ctx, "employees.count_by_department", newEmployeeQuery(employeeIncludes{}).whereDepartment(departmentID))
}

// CountByJobGrade は等級に属する社員数を返します。
func (r *EmployeeRepository) CountByJobGrade(ctx context.Context, jobGradeID int64) (int, error) {
	return r.count(ctx, "employees.count_by_job_grade", newEmployeeQuery(employeeIncludes{}).whereJobGrade(jobGradeID))
}

func (r *EmployeeRepository) list(ctx context.Context, name string, q *employeeQuery) ([]*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	employees, err := queryEmployees(pgdb.WithQueryName(ctx, name), exec, q)
	if err != nil {
		return nil, err
	}

	if err := attachRecords(ctx, exec, employees, q.includes); err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *EmployeeRepository) find(ctx context.Context, name string, q *employeeQuery) (*employee.Employee, error) {
	employees, err := r.list(ctx, name, q)
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return nil, nil
	}
	return employees[0], nil
}

func (r *EmployeeRepository) count(ctx context.Context, name string, q *employeeQuery) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var n int64
	if err := exec.QueryRow(pgdb.WithQueryName(ctx, name), q.countSQL(), q.args...).Scan(&n); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *EmployeeRepository) exists(ctx context.Context, name string, q *employeeQuery) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var found bool
	if err := exec.QueryRow(pgdb.WithQueryName(ctx, name), q.existsSQL(), q.args...).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

func queryEmployees(ctx context.Context, exec pgdb.Queryer, q *employeeQuery) ([]*employee.Employee, error) {
	rows, err := exec.Query(ctx, q.selectSQL(), q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows, q.includes)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

// attachRecords は給与履歴と欠勤履歴を社員 ID 単位の 1 クエリずつで取得して付与します。
func attachRecords(ctx context.Context, exec pgdb.Queryer, employees []*employee.Employee, includes employeeIncludes) error {
	if len(employees) == 0 || (!includes.salaries && !includes.absences) {
		return nil
	}

	ids := make([]int64, 0, len(employees))
	byID := make(map[int64]*employee.Employee, len(employees))
	for _, emp := range employees {
		ids = append(ids, emp.ID)
		byID[emp.ID] = emp
		if includes.salaries {
			emp.SalaryRecords = make([]employee.SalaryRecord, 0)
		}
		if includes.absences {
			emp.AbsenceRecords = make([]employee.AbsenceRecord, 0)
		}
	}

	if includes.salaries {
		records, err := querySalaryRecords(pgdb.WithQueryName(ctx, "salary_records.by_employees"), exec, ids)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if emp, ok := byID[rec.EmployeeID]; ok {
				emp.SalaryRecords = append(emp.SalaryRecords, rec)
			}
		}
	}

	if includes.absences {
		records, err := queryAbsenceRecords(pgdb.WithQueryName(ctx, "absence_records.by_employees"), exec, ids)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if emp, ok := byID[rec.EmployeeID]; ok {
				emp.AbsenceRecords = append(emp.AbsenceRecords, rec)
			}
		}
	}

	return nil
}

func querySalaryRecords(ctx context.Context, exec pgdb.Queryer, employeeIDs []int64) ([]employee.SalaryRecord, error) {
	rows, err := exec.Query(ctx, salaryRecordsByEmployeesSQL, employeeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]employee.SalaryRecord, 0)
	for rows.Next() {
		var (
			rec    employee.SalaryRecord
			reason sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.BaseSalary, &rec.EffectiveDate, &reason); err != nil {
			return nil, err
		}
		rec.EffectiveDate = dateOnly(rec.EffectiveDate)
		if reason.Valid {
			v := reason.String
			rec.Reason = &v
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func queryAbsenceRecords(ctx context.Context, exec pgdb.Queryer, employeeIDs []int64) ([]employee.AbsenceRecord, error) {
	rows, err := exec.Query(ctx, absenceRecordsByEmployeesSQL, employeeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]employee.AbsenceRecord, 0)
	for rows.Next() {
		var rec employee.AbsenceRecord
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.Year, &rec.Month, &rec.AbsenceDays, &rec.DeductionAmount); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func scanEmployee(row pgx.Row, includes employeeIncludes) (*employee.Employee, error) {
	var (
		emp         employee.Employee
		phone       sql.NullString
		status      string
		updatedAt   sql.NullTime
		department  employee.Department
		description sql.NullString
		grade       employee.JobGrade
	)

	dest := []any{
		&emp.ID,
		&emp.EmployeeNumber,
		&emp.FirstName,
		&emp.LastName,
		&emp.Email,
		&phone,
		&emp.HireDate,
		&status,
		&emp.IsDeleted,
		&emp.DepartmentID,
		&emp.JobGradeID,
		&emp.CreatedAt,
		&updatedAt,
	}
	if includes.department {
		dest = append(dest, &department.ID, &department.Name, &description)
	}
	if includes.jobGrade {
		dest = append(dest, &grade.ID, &grade.Name, &grade.MinSalary, &grade.MaxSalary)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	emp.Status = employee.Status(status)
	emp.HireDate = dateOnly(emp.HireDate)
	if phone.Valid {
		v := phone.String
		emp.PhoneNumber = &v
	}
	if updatedAt.Valid {
		v := updatedAt.Time
		emp.UpdatedAt = &v
	}
	if includes.department {
		if description.Valid {
			v := description.String
			department.Description = &v
		}
		emp.Department = &department
	}
	if includes.jobGrade {
		emp.JobGrade = &grade
	}

	return &emp, nil
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
