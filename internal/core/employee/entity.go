package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntityName はドメインエラーで使用するエンティティ名です。
const EntityName = "Employee"

// Status は社員の在籍状態を表します。
type Status string

const (
	StatusActive     Status = "Active"
	StatusInactive   Status = "Inactive"
	StatusOnLeave    Status = "OnLeave"
	StatusTerminated Status = "Terminated"
)

// Employee は社員エンティティです。給与履歴と欠勤履歴を所有します。
type Employee struct {
	ID             int64
	EmployeeNumber string
	FirstName      string
	LastName       string
	Email          string
	PhoneNumber    *string
	HireDate       time.Time
	Status         Status
	IsDeleted      bool
	DepartmentID   int64
	JobGradeID     int64
	CreatedAt      time.Time
	UpdatedAt      *time.Time

	Department     *Department
	JobGrade       *JobGrade
	SalaryRecords  []SalaryRecord
	AbsenceRecords []AbsenceRecord
}

// FullName は「名 姓」の形式で氏名を返します。
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// CurrentSalary は現時点で有効な給与レコードを返します。
func (e *Employee) CurrentSalary() (SalaryRecord, bool) {
	return e.CurrentSalaryAt(time.Now())
}

// CurrentSalaryAt は at 時点で有効な最新の給与レコードを返します。
// 履歴は適用日の新しい順に並んでいる前提で、at より後に適用される改定は読み飛ばします。
func (e *Employee) CurrentSalaryAt(at time.Time) (SalaryRecord, bool) {
	for _, r := range e.SalaryRecords {
		if !r.EffectiveDate.After(at) {
			return r, true
		}
	}
	return SalaryRecord{}, false
}

// Department は社員が参照する部署のスナップショットです。
type Department struct {
	ID          int64
	Name        string
	Description *string
}

// JobGrade は社員が参照する等級のスナップショットです。
type JobGrade struct {
	ID        int64
	Name      string
	MinSalary decimal.Decimal
	MaxSalary decimal.Decimal
}

// SalaryRecord は社員の給与改定履歴です。
type SalaryRecord struct {
	ID            int64
	EmployeeID    int64
	BaseSalary    decimal.Decimal
	EffectiveDate time.Time
	Reason        *string
}

// AbsenceRecord は月単位の欠勤記録です。
type AbsenceRecord struct {
	ID              int64
	EmployeeID      int64
	Year            int
	Month           int
	AbsenceDays     int
	DeductionAmount decimal.Decimal
}
