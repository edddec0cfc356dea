package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ogurasousui/payroll-api/internal/core/domainerr"
	"github.com/ogurasousui/payroll-api/internal/core/employee"
)

// EmployeeHandler は社員参照 API の HTTP ハンドラです。
type EmployeeHandler struct {
	svc employee.UseCase
}

// NewEmployeeHandler は EmployeeHandler を生成します。
func NewEmployeeHandler(svc employee.UseCase) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

// Register は g 配下にルートを登録します。
func (h *EmployeeHandler) Register(g *echo.Group) {
	g.GET("/employees", h.List)
	g.GET("/employees/all", h.ListAll)
	g.GET("/employees/active", h.ListActive)
	g.GET("/employees/recent", h.ListRecent)
	g.GET("/employees/by-number/:number", h.GetByNumber)
	g.GET("/employees/check-number", h.CheckNumber)
	g.GET("/employees/check-email", h.CheckEmail)
	g.GET("/employees/deleted/:id", h.GetDeleted)
	g.GET("/employees/:id", h.Get)
	g.GET("/employees/:id/verify", h.Verify)
}

type listEmployeesRequest struct {
	Page         int    `query:"page" validate:"gte=0"`
	PageSize     int    `query:"page_size" validate:"gte=0"`
	Search       string `query:"search" validate:"max=100"`
	DepartmentID int64  `query:"department_id" validate:"gte=0"`
	JobGradeID   int64  `query:"job_grade_id" validate:"gte=0"`
}

type recentEmployeesRequest struct {
	Count int `query:"count" validate:"gte=0,lte=100"`
}

type uniquenessRequest struct {
	Value     string `query:"value" validate:"required,max=255"`
	ExcludeID int64  `query:"exclude_id" validate:"gte=0"`
}

func (r uniquenessRequest) toInput() employee.UniquenessInput {
	in := employee.UniquenessInput{Value: r.Value}
	if r.ExcludeID > 0 {
		id := r.ExcludeID
		in.ExcludeID = &id
	}
	return in
}

// VerifyResponse は検証に成功した社員です。
type VerifyResponse struct {
	Valid    bool             `json:"valid"`
	Employee EmployeeResponse `json:"employee"`
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

func optionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a positive integer")
	}
	return id, nil
}

// List は GET /employees を処理します。
func (h *EmployeeHandler) List(c echo.Context) error {
	var req listEmployeesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.svc.ListEmployees(c.Request().Context(), employee.ListEmployeesInput{
		Page:         req.Page,
		PageSize:     req.PageSize,
		SearchTerm:   req.Search,
		DepartmentID: optionalID(req.DepartmentID),
		JobGradeID:   optionalID(req.JobGradeID),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, EmployeePageResponse{
		Items:      toEmployeeResponses(result.Employees),
		TotalCount: result.TotalCount,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

// ListAll は GET /employees/all を処理します。
func (h *EmployeeHandler) ListAll(c echo.Context) error {
	employees, err := h.svc.ListAllEmployees(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmployeeResponses(employees))
}

// ListActive は GET /employees/active を処理します。
func (h *EmployeeHandler) ListActive(c echo.Context) error {
	employees, err := h.svc.ListActiveEmployees(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmployeeResponses(employees))
}

// ListRecent は GET /employees/recent を処理します。
func (h *EmployeeHandler) ListRecent(c echo.Context) error {
	var req recentEmployeesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	employees, err := h.svc.ListRecentEmployees(c.Request().Context(), req.Count)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmployeeResponses(employees))
}

// GetByNumber は GET /employees/by-number/:number を処理します。
func (h *EmployeeHandler) GetByNumber(c echo.Context) error {
	number := c.Param("number")
	emp, err := h.svc.FindByEmployeeNumber(c.Request().Context(), number)
	if err != nil {
		return err
	}
	if emp == nil {
		return domainerr.NewNotFound(employee.EntityName, number)
	}
	return c.JSON(http.StatusOK, toEmployeeResponse(emp))
}

// CheckNumber は GET /employees/check-number を処理します。
func (h *EmployeeHandler) CheckNumber(c echo.Context) error {
	var req uniquenessRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	unique, err := h.svc.IsEmployeeNumberUnique(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"is_unique": unique})
}

// CheckEmail は GET /employees/check-email を処理します。
func (h *EmployeeHandler) CheckEmail(c echo.Context) error {
	var req uniquenessRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	duplicate, err := h.svc.IsDuplicateEmail(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"is_duplicate": duplicate})
}

// GetDeleted は GET /employees/deleted/:id を処理します。
func (h *EmployeeHandler) GetDeleted(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	emp, err := h.svc.FindDeletedEmployee(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if emp == nil {
		return domainerr.NewNotFound(employee.EntityName, id)
	}
	return c.JSON(http.StatusOK, toEmployeeResponse(emp))
}

// Get は GET /employees/:id を処理します。
func (h *EmployeeHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	emp, err := h.svc.GetEmployee(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmployeeResponse(emp))
}

// Verify は GET /employees/:id/verify を処理します。
func (h *EmployeeHandler) Verify(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	emp, err := h.svc.VerifyEmployee(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, VerifyResponse{Valid: true, Employee: toEmployeeResponse(emp)})
}
