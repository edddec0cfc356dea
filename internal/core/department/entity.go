package department

import "time"

// EntityName はドメインエラーで使用するエンティティ名です。
const EntityName = "Department"

// Department は部署エンティティです。
type Department struct {
	ID          int64
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Summary は部署と在籍社員数の組です。
type Summary struct {
	Department    *Department
	EmployeeCount int
}
