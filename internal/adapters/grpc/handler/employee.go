package handler

import (
	"context"
	"fmt"
	"math"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/payroll-api/internal/core/employee"
)

const dateLayout = "2006-01-02"

// EmployeeQueryHandler は EmployeeQueryService の gRPC 実装です。
type EmployeeQueryHandler struct {
	svc employee.UseCase
}

var _ EmployeeQueryServer = (*EmployeeQueryHandler)(nil)

// NewEmployeeQueryHandler は EmployeeQueryHandler を生成します。
func NewEmployeeQueryHandler(svc employee.UseCase) *EmployeeQueryHandler {
	return &EmployeeQueryHandler{svc: svc}
}

// ListEmployees はページ単位の社員一覧を返します。
//
// リクエスト: page, page_size, search, department_id, job_grade_id (いずれも任意)
func (h *EmployeeQueryHandler) ListEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	page, err := intField(fields, "page")
	if err != nil {
		return nil, err
	}
	pageSize, err := intField(fields, "page_size")
	if err != nil {
		return nil, err
	}
	search, err := stringField(fields, "search")
	if err != nil {
		return nil, err
	}
	departmentID, err := optionalIDField(fields, "department_id")
	if err != nil {
		return nil, err
	}
	jobGradeID, err := optionalIDField(fields, "job_grade_id")
	if err != nil {
		return nil, err
	}

	result, err := h.svc.ListEmployees(ctx, employee.ListEmployeesInput{
		Page:         int(page),
		PageSize:     int(pageSize),
		SearchTerm:   search,
		DepartmentID: departmentID,
		JobGradeID:   jobGradeID,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return newStruct(map[string]any{
		"items":       employeeList(result.Employees),
		"total_count": result.TotalCount,
		"page":        result.Page,
		"page_size":   result.PageSize,
		"total_pages": result.TotalPages,
	})
}

// GetEmployee は関連をすべて付与した社員を返します。存在しない場合は NotFound です。
func (h *EmployeeQueryHandler) GetEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := intField(req.GetFields(), "id")
	if err != nil {
		return nil, err
	}

	found, err := h.svc.GetEmployee(ctx, id)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newStruct(map[string]any{"employee": employeeMap(found)})
}

// ListRecentEmployees は登録日時の新しい順に社員を返します。count を省略した場合は既定件数です。
func (h *EmployeeQueryHandler) ListRecentEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	count, err := intField(req.GetFields(), "count")
	if err != nil {
		return nil, err
	}

	employees, err := h.svc.ListRecentEmployees(ctx, int(count))
	if err != nil {
		return nil, toStatusError(err)
	}

	return newStruct(map[string]any{"items": employeeList(employees)})
}

// CheckEmployeeNumber は社員番号が未使用かどうかを返します。
func (h *EmployeeQueryHandler) CheckEmployeeNumber(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := uniquenessInput(req.GetFields(), "employee_number")
	if err != nil {
		return nil, err
	}

	unique, err := h.svc.IsEmployeeNumberUnique(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newStruct(map[string]any{"is_unique": unique})
}

// CheckEmail はメールアドレスが他の社員に使われているかどうかを返します。
func (h *EmployeeQueryHandler) CheckEmail(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := uniquenessInput(req.GetFields(), "email")
	if err != nil {
		return nil, err
	}

	duplicate, err := h.svc.IsDuplicateEmail(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newStruct(map[string]any{"is_duplicate": duplicate})
}

func uniquenessInput(fields map[string]*structpb.Value, valueKey string) (employee.UniquenessInput, error) {
	value, err := stringField(fields, valueKey)
	if err != nil {
		return employee.UniquenessInput{}, err
	}
	excludeID, err := optionalIDField(fields, "exclude_id")
	if err != nil {
		return employee.UniquenessInput{}, err
	}
	// HTTP と同じく exclude_id=0 は未指定として扱います。
	if excludeID != nil && *excludeID == 0 {
		excludeID = nil
	}
	return employee.UniquenessInput{Value: value, ExcludeID: excludeID}, nil
}

func stringField(fields map[string]*structpb.Value, key string) (string, error) {
	v, ok := fields[key]
	if !ok || isNull(v) {
		return "", nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Error(codes.InvalidArgument, fmt.Sprintf("%s must be a string", key))
	}
	return s.StringValue, nil
}

// intField は整数値のフィールドを読み取ります。未指定は 0 です。
func intField(fields map[string]*structpb.Value, key string) (int64, error) {
	v, ok := fields[key]
	if !ok || isNull(v) {
		return 0, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Error(codes.InvalidArgument, fmt.Sprintf("%s must be a number", key))
	}
	f := n.NumberValue
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, status.Error(codes.InvalidArgument, fmt.Sprintf("%s must be an integer", key))
	}
	return int64(f), nil
}

func optionalIDField(fields map[string]*structpb.Value, key string) (*int64, error) {
	v, ok := fields[key]
	if !ok || isNull(v) {
		return nil, nil
	}
	id, err := intField(fields, key)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func isNull(v *structpb.Value) bool {
	_, ok := v.GetKind().(*structpb.Value_NullValue)
	return ok || v.GetKind() == nil
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}

func employeeList(employees []*employee.Employee) []any {
	items := make([]any, 0, len(employees))
	for _, e := range employees {
		items = append(items, employeeMap(e))
	}
	return items
}

func employeeMap(e *employee.Employee) map[string]any {
	m := map[string]any{
		"id":              e.ID,
		"employee_number": e.EmployeeNumber,
		"first_name":      e.FirstName,
		"last_name":       e.LastName,
		"full_name":       e.FullName(),
		"email":           e.Email,
		"phone_number":    optionalString(e.PhoneNumber),
		"hire_date":       e.HireDate.Format(dateLayout),
		"status":          string(e.Status),
		"is_deleted":      e.IsDeleted,
		"department_id":   e.DepartmentID,
		"job_grade_id":    e.JobGradeID,
		"created_at":      e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if e.UpdatedAt != nil {
		m["updated_at"] = e.UpdatedAt.UTC().Format(time.RFC3339)
	}

	if e.Department != nil {
		m["department"] = map[string]any{
			"id":          e.Department.ID,
			"name":        e.Department.Name,
			"description": optionalString(e.Department.Description),
		}
	}
	if e.JobGrade != nil {
		m["job_grade"] = map[string]any{
			"id":         e.JobGrade.ID,
			"name":       e.JobGrade.Name,
			"min_salary": e.JobGrade.MinSalary.StringFixed(2),
			"max_salary": e.JobGrade.MaxSalary.StringFixed(2),
		}
	}
	if current, ok := e.CurrentSalary(); ok {
		m["current_salary"] = current.BaseSalary.StringFixed(2)
	}

	if len(e.SalaryRecords) > 0 {
		salaries := make([]any, 0, len(e.SalaryRecords))
		for _, r := range e.SalaryRecords {
			salaries = append(salaries, map[string]any{
				"id":             r.ID,
				"base_salary":    r.BaseSalary.StringFixed(2),
				"effective_date": r.EffectiveDate.Format(dateLayout),
				"reason":         optionalString(r.Reason),
			})
		}
		m["salary_records"] = salaries
	}
	if len(e.AbsenceRecords) > 0 {
		absences := make([]any, 0, len(e.AbsenceRecords))
		for _, r := range e.AbsenceRecords {
			absences = append(absences, map[string]any{
				"id":               r.ID,
				"year":             r.Year,
				"month":            r.Month,
				"absence_days":     r.AbsenceDays,
				"deduction_amount": r.DeductionAmount.StringFixed(2),
			})
		}
		m["absence_records"] = absences
	}
	return m
}

func optionalString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
