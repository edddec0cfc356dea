package jobgrade

import "context"

// Repository は等級の参照系クエリの抽象です。
type Repository interface {
	List(ctx context.Context) ([]*JobGrade, error)
	FindByID(ctx context.Context, id int64) (*JobGrade, error)
}

// EmployeeCounter は等級ごとの社員数を数えます。
type EmployeeCounter interface {
	CountByJobGrade(ctx context.Context, jobGradeID int64) (int, error)
}
