package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ogurasousui/payroll-api/internal/core/department"
	"github.com/ogurasousui/payroll-api/internal/core/employee"
)

// DepartmentHandler は部署参照 API の HTTP ハンドラです。
type DepartmentHandler struct {
	departments department.UseCase
	employees   employee.UseCase
}

// NewDepartmentHandler は DepartmentHandler を生成します。
func NewDepartmentHandler(departments department.UseCase, employees employee.UseCase) *DepartmentHandler {
	return &DepartmentHandler{departments: departments, employees: employees}
}

// Register は g 配下にルートを登録します。
func (h *DepartmentHandler) Register(g *echo.Group) {
	g.GET("/departments", h.List)
	g.GET("/departments/:id", h.Get)
	g.GET("/departments/:id/employees", h.ListEmployees)
}

// List は GET /departments を処理します。
func (h *DepartmentHandler) List(c echo.Context) error {
	summaries, err := h.departments.ListDepartments(c.Request().Context())
	if err != nil {
		return err
	}

	items := make([]DepartmentResponse, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, toDepartmentResponse(s))
	}
	return c.JSON(http.StatusOK, items)
}

// Get は GET /departments/:id を処理します。
func (h *DepartmentHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	summary, err := h.departments.GetDepartment(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDepartmentResponse(summary))
}

// ListEmployees は GET /departments/:id/employees を処理します。部署が存在しない場合は 404 です。
func (h *DepartmentHandler) ListEmployees(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.departments.GetDepartment(ctx, id); err != nil {
		return err
	}

	employees, err := h.employees.ListByDepartment(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmployeeResponses(employees))
}
