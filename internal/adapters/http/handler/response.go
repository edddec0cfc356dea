package handler

import (
	"time"

	"github.com/ogurasousui/payroll-api/internal/core/department"
	"github.com/ogurasousui/payroll-api/internal/core/employee"
	"github.com/ogurasousui/payroll-api/internal/core/jobgrade"
)

const dateLayout = "2006-01-02"

// EmployeeResponse は社員の JSON 表現です。関連は付与されている場合のみ出力します。
type EmployeeResponse struct {
	ID             int64                   `json:"id"`
	EmployeeNumber string                  `json:"employee_number"`
	FirstName      string                  `json:"first_name"`
	LastName       string                  `json:"last_name"`
	FullName       string                  `json:"full_name"`
	Email          string                  `json:"email"`
	PhoneNumber    *string                 `json:"phone_number,omitempty"`
	HireDate       string                  `json:"hire_date"`
	Status         string                  `json:"status"`
	IsDeleted      bool                    `json:"is_deleted"`
	DepartmentID   int64                   `json:"department_id"`
	JobGradeID     int64                   `json:"job_grade_id"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      *time.Time              `json:"updated_at,omitempty"`
	Department     *DepartmentRef          `json:"department,omitempty"`
	JobGrade       *JobGradeRef            `json:"job_grade,omitempty"`
	CurrentSalary  *string                 `json:"current_salary,omitempty"`
	SalaryRecords  []SalaryRecordResponse  `json:"salary_records,omitempty"`
	AbsenceRecords []AbsenceRecordResponse `json:"absence_records,omitempty"`
}

// DepartmentRef は社員に付与された部署です。
type DepartmentRef struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// JobGradeRef は社員に付与された等級です。
type JobGradeRef struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	MinSalary string `json:"min_salary"`
	MaxSalary string `json:"max_salary"`
}

// SalaryRecordResponse は給与履歴の 1 件です。
type SalaryRecordResponse struct {
	ID            int64   `json:"id"`
	BaseSalary    string  `json:"base_salary"`
	EffectiveDate string  `json:"effective_date"`
	Reason        *string `json:"reason,omitempty"`
}

// AbsenceRecordResponse は欠勤記録の 1 件です。
type AbsenceRecordResponse struct {
	ID              int64  `json:"id"`
	Year            int    `json:"year"`
	Month           int    `json:"month"`
	AbsenceDays     int    `json:"absence_days"`
	DeductionAmount string `json:"deduction_amount"`
}

// EmployeePageResponse はページング付きの社員一覧です。
type EmployeePageResponse struct {
	Items      []EmployeeResponse `json:"items"`
	TotalCount int                `json:"total_count"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

// DepartmentResponse は部署と在籍社員数です。
type DepartmentResponse struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Description   *string    `json:"description,omitempty"`
	EmployeeCount int        `json:"employee_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// JobGradeResponse は等級と所属社員数です。
type JobGradeResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	MinSalary     string    `json:"min_salary"`
	MaxSalary     string    `json:"max_salary"`
	EmployeeCount int       `json:"employee_count"`
	CreatedAt     time.Time `json:"created_at"`
}

func toEmployeeResponse(e *employee.Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:             e.ID,
		EmployeeNumber: e.EmployeeNumber,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		FullName:       e.FullName(),
		Email:          e.Email,
		PhoneNumber:    e.PhoneNumber,
		HireDate:       e.HireDate.Format(dateLayout),
		Status:         string(e.Status),
		IsDeleted:      e.IsDeleted,
		DepartmentID:   e.DepartmentID,
		JobGradeID:     e.JobGradeID,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}

	if d := e.Department; d != nil {
		resp.Department = &DepartmentRef{ID: d.ID, Name: d.Name, Description: d.Description}
	}
	if g := e.JobGrade; g != nil {
		resp.JobGrade = &JobGradeRef{
			ID:        g.ID,
			Name:      g.Name,
			MinSalary: g.MinSalary.StringFixed(2),
			MaxSalary: g.MaxSalary.StringFixed(2),
		}
	}

	if current, ok := e.CurrentSalary(); ok {
		v := current.BaseSalary.StringFixed(2)
		resp.CurrentSalary = &v
	}
	for _, s := range e.SalaryRecords {
		resp.SalaryRecords = append(resp.SalaryRecords, SalaryRecordResponse{
			ID:            s.ID,
			BaseSalary:    s.BaseSalary.StringFixed(2),
			EffectiveDate: s.EffectiveDate.Format(dateLayout),
			Reason:        s.Reason,
		})
	}
	for _, a := range e.AbsenceRecords {
		resp.AbsenceRecords = append(resp.AbsenceRecords, AbsenceRecordResponse{
			ID:              a.ID,
			Year:            a.Year,
			Month:           a.Month,
			AbsenceDays:     a.AbsenceDays,
			DeductionAmount: a.DeductionAmount.StringFixed(2),
		})
	}

	return resp
}

func toEmployeeResponses(employees []*employee.Employee) []EmployeeResponse {
	items := make([]EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		items = append(items, toEmployeeResponse(e))
	}
	return items
}

func toDepartmentResponse(s *department.Summary) DepartmentResponse {
	d := s.Department
	return DepartmentResponse{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		EmployeeCount: s.EmployeeCount,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func toJobGradeResponse(s *jobgrade.Summary) JobGradeResponse {
	g := s.JobGrade
	return JobGradeResponse{
		ID:            g.ID,
		Name:          g.Name,
		Description:   g.Description,
		MinSalary:     g.MinSalary.StringFixed(2),
		MaxSalary:     g.MaxSalary.StringFixed(2),
		EmployeeCount: s.EmployeeCount,
		CreatedAt:     g.CreatedAt,
	}
}
