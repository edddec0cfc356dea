package department

import "context"

// Repository は部署の参照系クエリの抽象です。
type Repository interface {
	List(ctx context.Context) ([]*Department, error)
	FindByID(ctx context.Context, id int64) (*Department, error)
}

// EmployeeCounter は部署ごとの在籍社員数を数えます。
type EmployeeCounter interface {
	CountByDepartment(ctx context.Context, departmentID int64) (int, error)
}
