package jobgrade

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntityName はドメインエラーで使用するエンティティ名です。
const EntityName = "JobGrade"

// JobGrade は給与レンジを持つ等級エンティティです。
type JobGrade struct {
	ID          int64
	Name        string
	Description *string
	MinSalary   decimal.Decimal
	MaxSalary   decimal.Decimal
	CreatedAt   time.Time
}

// Summary は等級と所属社員数の組です。
type Summary struct {
	JobGrade      *JobGrade
	EmployeeCount int
}
