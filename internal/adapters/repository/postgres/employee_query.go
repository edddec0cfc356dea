package postgres

import (
	"strconv"
	"strings"

	"github.com/ogurasousui/payroll-api/internal/core/employee"
)

const (
	employeeColumns = "e.id, e.employee_number, e.first_name, e.last_name, e.email, e.phone_number, " +
		"e.hire_date, e.status, e.is_deleted, e.department_id, e.job_grade_id, e.created_at, e.updated_at"
	departmentColumns = "d.id, d.name, d.description"
	jobGradeColumns   = "g.id, g.name, g.min_salary, g.max_salary"

	departmentJoin = " JOIN departments d ON d.id = e.department_id"
	jobGradeJoin   = " JOIN job_grades g ON g.id = e.job_grade_id"

	notDeletedCondition = "e.is_deleted = FALSE"

	orderByName   = "e.last_name ASC, e.first_name ASC, e.id ASC"
	orderByRecent = "e.created_at DESC, e.id DESC"
)

// employeeIncludes は取得時に付与する関連の指定です。
type employeeIncludes struct {
	department bool
	jobGrade   bool
	salaries   bool
	absences   bool
}

var (
	includeSummary    = employeeIncludes{department: true, jobGrade: true}
	includeWithSalary = employeeIncludes{department: true, jobGrade: true, salaries: true}
	includeAll        = employeeIncludes{department: true, jobGrade: true, salaries: true, absences: true}
)

// employeeQuery は employees テーブルに対する SELECT 文を組み立てます。
//
// 論理削除された行は既定で除外されます。withDeleted を呼んだ場合のみ除外条件を付けません。
type employeeQuery struct {
	includes    employeeIncludes
	withDeleted bool
	conditions  []string
	args        []any
	orderBy     string
	limit       string
	offset      string
}

func newEmployeeQuery(includes employeeIncludes) *employeeQuery {
	return &employeeQuery{includes: includes}
}

// bind は値を引数に追加し、対応するプレースホルダを返します。
func (q *employeeQuery) bind(value any) string {
	q.args = append(q.args, value)
	return "$" + strconv.Itoa(len(q.args))
}

func (q *employeeQuery) where(condition string) *employeeQuery {
	q.conditions = append(q.conditions, condition)
	return q
}

func (q *employeeQuery) withDeletedRows() *employeeQuery {
	q.withDeleted = true
	return q
}

func (q *employeeQuery) whereID(id int64) *employeeQuery {
	return q.where("e.id = " + q.bind(id))
}

func (q *employeeQuery) whereDepartment(departmentID int64) *employeeQuery {
	return q.where("e.department_id = " + q.bind(departmentID))
}

func (q *employeeQuery) whereJobGrade(jobGradeID int64) *employeeQuery {
	return q.where("e.job_grade_id = " + q.bind(jobGradeID))
}

func (q *employeeQuery) whereNotID(excludeID *int64) *employeeQuery {
	if excludeID == nil {
		return q
	}
	return q.where("e.id <> " + q.bind(*excludeID))
}

// applyFilter は検索語・部署・等級の条件を追加します。
func (q *employeeQuery) applyFilter(filter employee.Filter) *employeeQuery {
	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		p := q.bind("%" + escapeLike(strings.ToLower(term)) + "%")
		q.where("(LOWER(e.first_name) LIKE " + p + ` ESCAPE '\'` +
			" OR LOWER(e.last_name) LIKE " + p + ` ESCAPE '\'` +
			" OR LOWER(e.employee_number) LIKE " + p + ` ESCAPE '\'` +
			" OR LOWER(e.email) LIKE " + p + ` ESCAPE '\')`)
	}
	if filter.DepartmentID != nil {
		q.whereDepartment(*filter.DepartmentID)
	}
	if filter.JobGradeID != nil {
		q.whereJobGrade(*filter.JobGradeID)
	}
	return q
}

func (q *employeeQuery) order(orderBy string) *employeeQuery {
	q.orderBy = orderBy
	return q
}

func (q *employeeQuery) paginate(page employee.Page) *employeeQuery {
	q.limit = q.bind(page.Size)
	q.offset = q.bind(page.Offset())
	return q
}

func (q *employeeQuery) take(n int) *employeeQuery {
	q.limit = q.bind(n)
	return q
}

func (q *employeeQuery) whereClause() string {
	conditions := make([]string, 0, len(q.conditions)+1)
	if !q.withDeleted {
		conditions = append(conditions, notDeletedCondition)
	}
	conditions = append(conditions, q.conditions...)
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}

func (q *employeeQuery) selectSQL() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(employeeColumns)
	if q.includes.department {
		b.WriteString(", ")
		b.WriteString(departmentColumns)
	}
	if q.includes.jobGrade {
		b.WriteString(", ")
		b.WriteString(jobGradeColumns)
	}
	b.WriteString(" FROM employees e")
	if q.includes.department {
		b.WriteString(departmentJoin)
	}
	if q.includes.jobGrade {
		b.WriteString(jobGradeJoin)
	}
	b.WriteString(q.whereClause())
	if q.orderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.orderBy)
	}
	if q.limit != "" {
		b.WriteString(" LIMIT ")
		b.WriteString(q.limit)
	}
	if q.offset != "" {
		b.WriteString(" OFFSET ")
		b.WriteString(q.offset)
	}
	return b.String()
}

func (q *employeeQuery) countSQL() string {
	return "SELECT COUNT(*) FROM employees e" + q.whereClause()
}

func (q *employeeQuery) existsSQL() string {
	return "SELECT EXISTS (SELECT 1 FROM employees e" + q.whereClause() + ")"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike は LIKE のメタ文字をエスケープします。
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
