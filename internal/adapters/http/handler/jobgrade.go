package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ogurasousui/payroll-api/internal/core/employee"
	"github.com/ogurasousui/payroll-api/internal/core/jobgrade"
)

// JobGradeHandler は等級参照 API の HTTP ハンドラです。
type JobGradeHandler struct {
	grades    jobgrade.UseCase
	employees employee.UseCase
}

// NewJobGradeHandler は JobGradeHandler を生成します。
func NewJobGradeHandler(grades jobgrade.UseCase, employees employee.UseCase) *JobGradeHandler {
	return &JobGradeHandler{grades: grades, employees: employees}
}

// Register は g 配下にルートを登録します。
func (h *JobGradeHandler) Register(g *echo.Group) {
	g.GET("/job-grades", h.List)
	g.GET("/job-grades/:id", h.Get)
	g.GET("/job-grades/:id/employees", h.ListEmployees)
}

// List は GET /job-grades を処理します。
func (h *JobGradeHandler) List(c echo.Context) error {
	summaries, err := h.grades.ListJobGrades(c.Request().Context())
	if err != nil {
		return err
	}

	items := make([]JobGradeResponse, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, toJobGradeResponse(s))
	}
	return c.JSON(http.StatusOK, items)
}

// Get は GET /job-grades/:id を処理します。
func (h *JobGradeHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	summary, err := h.grades.GetJobGrade(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobGradeResponse(summary))
}

// ListEmployees は GET /job-grades/:id/employees を処理します。
func (h *JobGradeHandler) ListEmployees(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.grades.GetJobGrade(ctx, id); err != nil {
		return err
	}

	employees, err := h.employees.ListByJobGrade(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmployeeResponses(employees))
}
