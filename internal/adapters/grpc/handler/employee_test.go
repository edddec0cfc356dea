package handler

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/payroll-api/internal/core/domainerr"
	"github.com/ogurasousui/payroll-api/internal/core/employee"
)

// stubEmployeeUseCase はテストで使うメソッドだけを実装します。それ以外の呼び出しは panic します。
type stubEmployeeUseCase struct {
	employee.UseCase

	listInput employee.ListEmployeesInput
	listOut   *employee.ListEmployeesResult

	getID  int64
	getOut *employee.Employee

	recentCount int
	recentOut   []*employee.Employee

	uniqueness employee.UniquenessInput
	boolOut    bool

	err error
}

func (s *stubEmployeeUseCase) ListEmployees(_ context.Context, in employee.ListEmployeesInput) (*employee.ListEmployeesResult, error) {
	s.listInput = in
	return s.listOut, s.err
}

func (s *stubEmployeeUseCase) GetEmployee(_ context.Context, id int64) (*employee.Employee, error) {
	s.getID = id
	return s.getOut, s.err
}

func (s *stubEmployeeUseCase) ListRecentEmployees(_ context.Context, count int) ([]*employee.Employee, error) {
	s.recentCount = count
	return s.recentOut, s.err
}

func (s *stubEmployeeUseCase) IsEmployeeNumberUnique(_ context.Context, in employee.UniquenessInput) (bool, error) {
	s.uniqueness = in
	return s.boolOut, s.err
}

func (s *stubEmployeeUseCase) IsDuplicateEmail(_ context.Context, in employee.UniquenessInput) (bool, error) {
	s.uniqueness = in
	return s.boolOut, s.err
}

func sampleEmployee() *employee.Employee {
	reason := "annual review"
	return &employee.Employee{
		ID:             7,
		EmployeeNumber: "EMP007",
		FirstName:      "Alice",
		LastName:       "Lee",
		Email:          "alice.lee@example.com",
		HireDate:       time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:         employee.StatusActive,
		DepartmentID:   1,
		JobGradeID:     2,
		CreatedAt:      time.Date(2023, 3, 20, 9, 0, 0, 0, time.UTC),
		Department:     &employee.Department{ID: 1, Name: "Engineering"},
		JobGrade: &employee.JobGrade{
			ID:        2,
			Name:      "G2",
			MinSalary: decimal.RequireFromString("300000"),
			MaxSalary: decimal.RequireFromString("500000"),
		},
		SalaryRecords: []employee.SalaryRecord{
			{ID: 11, EmployeeID: 7, BaseSalary: decimal.RequireFromString("420000.5"), EffectiveDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Reason: &reason},
			{ID: 10, EmployeeID: 7, BaseSalary: decimal.RequireFromString("400000"), EffectiveDate: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)},
		},
		AbsenceRecords: []employee.AbsenceRecord{
			{ID: 3, EmployeeID: 7, Year: 2024, Month: 5, AbsenceDays: 2, DeductionAmount: decimal.RequireFromString("38181.82")},
		},
	}
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestEmployeeQueryHandler_ListEmployees(t *testing.T) {
	t.Parallel()

	stub := &stubEmployeeUseCase{
		listOut: &employee.ListEmployeesResult{
			Employees:  []*employee.Employee{sampleEmployee()},
			TotalCount: 3,
			Page:       2,
			PageSize:   1,
			TotalPages: 3,
		},
	}
	h := NewEmployeeQueryHandler(stub)

	resp, err := h.ListEmployees(context.Background(), mustStruct(t, map[string]any{
		"page":          2,
		"page_size":     1,
		"search":        "lee",
		"department_id": 1,
	}))
	require.NoError(t, err)

	assert.Equal(t, 2, stub.listInput.Page)
	assert.Equal(t, 1, stub.listInput.PageSize)
	assert.Equal(t, "lee", stub.listInput.SearchTerm)
	require.NotNil(t, stub.listInput.DepartmentID)
	assert.Equal(t, int64(1), *stub.listInput.DepartmentID)
	assert.Nil(t, stub.listInput.JobGradeID)

	m := resp.AsMap()
	assert.Equal(t, float64(3), m["total_count"])
	assert.Equal(t, float64(3), m["total_pages"])
	items := m["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "Alice Lee", item["full_name"])
	assert.Equal(t, "2023-04-01", item["hire_date"])
	assert.Equal(t, "420000.50", item["current_salary"])
	assert.Nil(t, item["phone_number"])
	assert.Equal(t, "Engineering", item["department"].(map[string]any)["name"])
	assert.Equal(t, "300000.00", item["job_grade"].(map[string]any)["min_salary"])
	assert.Len(t, item["salary_records"], 2)
	assert.Equal(t, "38181.82", item["absence_records"].([]any)[0].(map[string]any)["deduction_amount"])
}

func TestEmployeeQueryHandler_ListEmployees_InvalidFieldTypes(t *testing.T) {
	t.Parallel()

	cases := map[string]map[string]any{
		"page as string":       {"page": "2"},
		"fractional page size": {"page_size": 1.5},
		"search as number":     {"search": 10},
		"department as bool":   {"department_id": true},
	}
	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			h := NewEmployeeQueryHandler(&stubEmployeeUseCase{})
			_, err := h.ListEmployees(context.Background(), mustStruct(t, fields))
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestEmployeeQueryHandler_ListEmployees_DomainValidationError(t *testing.T) {
	t.Parallel()

	stub := &stubEmployeeUseCase{err: employee.ErrInvalidPageSize}
	h := NewEmployeeQueryHandler(stub)

	_, err := h.ListEmployees(context.Background(), mustStruct(t, map[string]any{"page_size": 1000}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestEmployeeQueryHandler_GetEmployee(t *testing.T) {
	t.Parallel()

	stub := &stubEmployeeUseCase{getOut: sampleEmployee()}
	h := NewEmployeeQueryHandler(stub)

	resp, err := h.GetEmployee(context.Background(), mustStruct(t, map[string]any{"id": 7}))
	require.NoError(t, err)
	assert.Equal(t, int64(7), stub.getID)

	got := resp.AsMap()["employee"].(map[string]any)
	assert.Equal(t, "EMP007", got["employee_number"])
	assert.Equal(t, "2023-03-20T09:00:00Z", got["created_at"])
	_, hasUpdated := got["updated_at"]
	assert.False(t, hasUpdated)
}

func TestEmployeeQueryHandler_GetEmployee_NotFound(t *testing.T) {
	t.Parallel()

	stub := &stubEmployeeUseCase{err: domainerr.NewNotFound(employee.EntityName, int64(99))}
	h := NewEmployeeQueryHandler(stub)

	_, err := h.GetEmployee(context.Background(), mustStruct(t, map[string]any{"id": 99}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestEmployeeQueryHandler_ListRecentEmployees(t *testing.T) {
	t.Parallel()

	stub := &stubEmployeeUseCase{recentOut: []*employee.Employee{sampleEmployee()}}
	h := NewEmployeeQueryHandler(stub)

	resp, err := h.ListRecentEmployees(context.Background(), &structpb.Struct{})
	require.NoError(t, err)
	assert.Equal(t, 0, stub.recentCount)
	assert.Len(t, resp.AsMap()["items"], 1)
}

func TestEmployeeQueryHandler_CheckEmployeeNumber(t *testing.T) {
	t.Parallel()

	stub := &stubEmployeeUseCase{boolOut: true}
	h := NewEmployeeQueryHandler(stub)

	resp, err := h.CheckEmployeeNumber(context.Background(), mustStruct(t, map[string]any{
		"employee_number": "EMP100",
		"exclude_id":      3,
	}))
	require.NoError(t, err)
	assert.Equal(t, true, resp.AsMap()["is_unique"])
	assert.Equal(t, "EMP100", stub.uniqueness.Value)
	require.NotNil(t, stub.uniqueness.ExcludeID)
	assert.Equal(t, int64(3), *stub.uniqueness.ExcludeID)
}

func TestEmployeeQueryHandler_CheckEmail(t *testing.T) {
	t.Parallel()

	stub := &stubEmployeeUseCase{boolOut: false}
	h := NewEmployeeQueryHandler(stub)

	resp, err := h.CheckEmail(context.Background(), mustStruct(t, map[string]any{
		"email":      "new@example.com",
		"exclude_id": nil,
	}))
	require.NoError(t, err)
	assert.Equal(t, false, resp.AsMap()["is_duplicate"])
	assert.Nil(t, stub.uniqueness.ExcludeID)
}

func TestEmployeeQueryHandler_CheckEmail_ZeroExcludeIDIsAbsent(t *testing.T) {
	t.Parallel()

	stub := &stubEmployeeUseCase{boolOut: true}
	h := NewEmployeeQueryHandler(stub)

	resp, err := h.CheckEmail(context.Background(), mustStruct(t, map[string]any{
		"email":      "ann.lee@example.com",
		"exclude_id": 0,
	}))
	require.NoError(t, err)
	assert.Equal(t, true, resp.AsMap()["is_duplicate"])
	assert.Nil(t, stub.uniqueness.ExcludeID)
}

func TestEmployeeQueryHandler_CheckEmployeeNumber_NegativeExcludeID(t *testing.T) {
	t.Parallel()

	stub := &stubEmployeeUseCase{err: employee.ErrInvalidID}
	h := NewEmployeeQueryHandler(stub)

	_, err := h.CheckEmployeeNumber(context.Background(), mustStruct(t, map[string]any{
		"employee_number": "EMP100",
		"exclude_id":      -1,
	}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	require.NotNil(t, stub.uniqueness.ExcludeID)
	assert.Equal(t, int64(-1), *stub.uniqueness.ExcludeID)
}

func TestToStatusError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, toStatusError(nil))
	assert.Equal(t, codes.InvalidArgument, status.Code(toStatusError(employee.ErrInvalidEmail)))
	assert.Equal(t, codes.NotFound, status.Code(toStatusError(domainerr.NewNotFound(employee.EntityName, 1))))
	assert.Equal(t, codes.Internal, status.Code(toStatusError(errors.New("connection reset"))))

	passthrough := status.Error(codes.Unavailable, "down")
	assert.Equal(t, passthrough, toStatusError(passthrough))
}

func TestToStatusError_InvalidStateDetails(t *testing.T) {
	t.Parallel()

	err := toStatusError(domainerr.NewInvalidState(employee.EntityName, int64(7), "salary records are missing"))
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.FailedPrecondition, st.Code())

	details := st.Details()
	require.Len(t, details, 1)
	failure, ok := details[0].(*errdetails.PreconditionFailure)
	require.True(t, ok)
	require.Len(t, failure.GetViolations(), 1)
	assert.Equal(t, employee.EntityName, failure.GetViolations()[0].GetSubject())
	assert.Equal(t, "salary records are missing", failure.GetViolations()[0].GetDescription())
}

func TestEmployeeQueryService_OverBufconn(t *testing.T) {
	t.Parallel()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	stub := &stubEmployeeUseCase{boolOut: true, getOut: sampleEmployee()}
	RegisterEmployeeQueryServer(srv, NewEmployeeQueryHandler(stub))
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := NewEmployeeQueryClient(conn)

	resp, err := client.Call(ctx, "CheckEmployeeNumber", mustStruct(t, map[string]any{"employee_number": "EMP001"}))
	require.NoError(t, err)
	assert.Equal(t, true, resp.AsMap()["is_unique"])

	resp, err = client.Call(ctx, "GetEmployee", mustStruct(t, map[string]any{"id": 7}))
	require.NoError(t, err)
	assert.Equal(t, "alice.lee@example.com", resp.AsMap()["employee"].(map[string]any)["email"])

	_, err = client.Call(ctx, "GetEmployee", mustStruct(t, map[string]any{"id": "seven"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Call(ctx, "DeleteEmployee", &structpb.Struct{})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}
