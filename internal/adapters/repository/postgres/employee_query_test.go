package postgres

import (
	"math"
	"reflect"
	"testing"

	"github.com/ogurasousui/payroll-api/internal/core/employee"
)

func TestEmployeeQuery_ExcludesDeletedByDefault(t *testing.T) {
	t.Parallel()

	q := newEmployeeQuery(employeeIncludes{})

	if got, want := q.countSQL(), "SELECT COUNT(*) FROM employees e WHERE e.is_deleted = FALSE"; got != want {
		t.Fatalf("unexpected count SQL.\nwant %s\ngot  %s", want, got)
	}
	if len(q.args) != 0 {
		t.Fatalf("expected no args, got %v", q.args)
	}
}

func TestEmployeeQuery_WithDeletedRowsBypassesPredicate(t *testing.T) {
	t.Parallel()

	q := newEmployeeQuery(employeeIncludes{}).withDeletedRows().whereID(7)

	want := "SELECT EXISTS (SELECT 1 FROM employees e WHERE e.id = $1)"
	if got := q.existsSQL(); got != want {
		t.Fatalf("unexpected exists SQL.\nwant %s\ngot  %s", want, got)
	}

	bare := newEmployeeQuery(employeeIncludes{}).withDeletedRows()
	if got := bare.countSQL(); got != "SELECT COUNT(*) FROM employees e" {
		t.Fatalf("expected no WHERE clause, got %s", got)
	}
}

func TestEmployeeQuery_SelectWithFilterAndPage(t *testing.T) {
	t.Parallel()

	departmentID := int64(2)
	jobGradeID := int64(3)
	q := newEmployeeQuery(includeWithSalary).
		applyFilter(employee.Filter{SearchTerm: "  50%_Off ", DepartmentID: &departmentID, JobGradeID: &jobGradeID}).
		order(orderByName).
		paginate(employee.Page{Number: 3, Size: 20})

	want := "SELECT e.id, e.employee_number, e.first_name, e.last_name, e.email, e.phone_number, " +
		"e.hire_date, e.status, e.is_deleted, e.department_id, e.job_grade_id, e.created_at, e.updated_at, " +
		"d.id, d.name, d.description, g.id, g.name, g.min_salary, g.max_salary " +
		"FROM employees e JOIN departments d ON d.id = e.department_id JOIN job_grades g ON g.id = e.job_grade_id " +
		`WHERE e.is_deleted = FALSE AND (LOWER(e.first_name) LIKE $1 ESCAPE '\' OR LOWER(e.last_name) LIKE $1 ESCAPE '\' ` +
		`OR LOWER(e.employee_number) LIKE $1 ESCAPE '\' OR LOWER(e.email) LIKE $1 ESCAPE '\') ` +
		"AND e.department_id = $2 AND e.job_grade_id = $3 " +
		"ORDER BY e.last_name ASC, e.first_name ASC, e.id ASC LIMIT $4 OFFSET $5"

	if got := q.selectSQL(); got != want {
		t.Fatalf("unexpected select SQL.\nwant %s\ngot  %s", want, got)
	}

	wantArgs := []any{`%50\%\_off%`, int64(2), int64(3), 20, 40}
	if !reflect.DeepEqual(q.args, wantArgs) {
		t.Fatalf("unexpected args. want %v got %v", wantArgs, q.args)
	}
}

func TestEmployeeQuery_BlankSearchIsIgnored(t *testing.T) {
	t.Parallel()

	q := newEmployeeQuery(employeeIncludes{}).applyFilter(employee.Filter{SearchTerm: "   "})

	if got := q.countSQL(); got != "SELECT COUNT(*) FROM employees e WHERE e.is_deleted = FALSE" {
		t.Fatalf("blank search must not add a condition, got %s", got)
	}
}

func TestEmployeeQuery_PaginateSaturatesOffset(t *testing.T) {
	t.Parallel()

	q := newEmployeeQuery(employeeIncludes{}).paginate(employee.Page{Number: math.MaxInt, Size: 20})

	wantArgs := []any{20, math.MaxInt}
	if !reflect.DeepEqual(q.args, wantArgs) {
		t.Fatalf("unexpected args. want %v got %v", wantArgs, q.args)
	}
}

func TestEmployeeQuery_RecentWithSingleJoin(t *testing.T) {
	t.Parallel()

	q := newEmployeeQuery(employeeIncludes{department: true}).order(orderByRecent).take(5)

	want := "SELECT " + employeeColumns + ", d.id, d.name, d.description FROM employees e" +
		" JOIN departments d ON d.id = e.department_id WHERE e.is_deleted = FALSE" +
		" ORDER BY e.created_at DESC, e.id DESC LIMIT $1"
	if got := q.selectSQL(); got != want {
		t.Fatalf("unexpected select SQL.\nwant %s\ngot  %s", want, got)
	}
	if !reflect.DeepEqual(q.args, []any{5}) {
		t.Fatalf("unexpected args: %v", q.args)
	}
}

func TestEmployeeQuery_WhereNotID(t *testing.T) {
	t.Parallel()

	excluded := int64(9)
	q := newEmployeeQuery(employeeIncludes{})
	q.where("e.email = " + q.bind("a@example.com")).whereNotID(&excluded).whereNotID(nil)

	want := "SELECT EXISTS (SELECT 1 FROM employees e WHERE e.is_deleted = FALSE AND e.email = $1 AND e.id <> $2)"
	if got := q.existsSQL(); got != want {
		t.Fatalf("unexpected exists SQL.\nwant %s\ngot  %s", want, got)
	}
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"plain":   "plain",
		"100%":    `100\%`,
		"a_b":     `a\_b`,
		`back\sl`: `back\\sl`,
		`%_\`:     `\%\_\\`,
	}
	for in, want := range cases {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}
