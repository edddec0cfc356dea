package employee

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ogurasousui/payroll-api/internal/core/domainerr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type payrollProfile struct {
	EmployeeNumber string `validate:"required,max=32"`
	FirstName      string `validate:"required,max=100"`
	LastName       string `validate:"required,max=100"`
	Email          string `validate:"required,email"`
	Status         string `validate:"oneof=Active Inactive OnLeave Terminated"`
	DepartmentID   int64  `validate:"gt=0"`
	JobGradeID     int64  `validate:"gt=0"`
}

type absenceProfile struct {
	Year        int `validate:"gte=1900,lte=9999"`
	Month       int `validate:"gte=1,lte=12"`
	AbsenceDays int `validate:"gte=0,lte=31"`
}

// VerifyEmployee は給与計算に必要な不変条件を検証します。
//
// 違反がある場合は違反ごとのメッセージを持つ InvalidStateError を返します。
func (s *Service) VerifyEmployee(ctx context.Context, id int64) (*Employee, error) {
	emp, err := s.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	if violations := Violations(emp); len(violations) > 0 {
		return nil, domainerr.NewInvalidState(EntityName, emp.ID, violations...)
	}
	return emp, nil
}

// Violations は emp が満たしていない不変条件を列挙します。
func Violations(emp *Employee) []string {
	violations := make([]string, 0)

	violations = append(violations, structViolations("", payrollProfile{
		EmployeeNumber: emp.EmployeeNumber,
		FirstName:      emp.FirstName,
		LastName:       emp.LastName,
		Email:          emp.Email,
		Status:         string(emp.Status),
		DepartmentID:   emp.DepartmentID,
		JobGradeID:     emp.JobGradeID,
	})...)

	if emp.Department == nil {
		violations = append(violations, "Department is not attached")
	}
	if emp.JobGrade == nil {
		violations = append(violations, "JobGrade is not attached")
	}

	current, hasSalary := emp.CurrentSalary()
	if emp.Status == StatusActive && !hasSalary {
		if len(emp.SalaryRecords) == 0 {
			violations = append(violations, "active employee has no salary record")
		} else {
			violations = append(violations, "active employee has no salary record in effect")
		}
	}

	if hasSalary {
		if !current.BaseSalary.IsPositive() {
			violations = append(violations, "current base salary must be positive")
		}
		if grade := emp.JobGrade; grade != nil && grade.MaxSalary.IsPositive() {
			if current.BaseSalary.LessThan(grade.MinSalary) || current.BaseSalary.GreaterThan(grade.MaxSalary) {
				violations = append(violations, fmt.Sprintf(
					"current base salary %s is outside job grade %q band [%s, %s]",
					current.BaseSalary.StringFixed(2), grade.Name,
					grade.MinSalary.StringFixed(2), grade.MaxSalary.StringFixed(2),
				))
			}
		}
	}

	for _, absence := range emp.AbsenceRecords {
		prefix := fmt.Sprintf("AbsenceRecord[%d].", absence.ID)
		violations = append(violations, structViolations(prefix, absenceProfile{
			Year:        absence.Year,
			Month:       absence.Month,
			AbsenceDays: absence.AbsenceDays,
		})...)
		if absence.DeductionAmount.IsNegative() {
			violations = append(violations, prefix+"DeductionAmount must not be negative")
		}
	}

	return violations
}

func structViolations(prefix string, v any) []string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{prefix + err.Error()}
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fmt.Sprintf("%s%s failed on the '%s' rule", prefix, fe.Field(), fe.Tag()))
	}
	return messages
}
