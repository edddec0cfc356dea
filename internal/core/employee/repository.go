package employee

import (
	"context"
	"math"
)

// Repository は社員の参照系クエリの抽象です。
//
// 論理削除された社員は FindDeleted を除くすべての操作から除外されます。
// Find* 系は該当なしのとき nil, nil を返し、GetWithDetails のみ NotFound エラーを返します。
type Repository interface {
	ListWithDetails(ctx context.Context, filter Filter, page Page) ([]*Employee, error)
	Count(ctx context.Context, filter Filter) (int, error)
	GetWithDetails(ctx context.Context, id int64) (*Employee, error)
	FindWithDetails(ctx context.Context, id int64) (*Employee, error)
	ListAllWithDetails(ctx context.Context) ([]*Employee, error)
	ListByDepartment(ctx context.Context, departmentID int64) ([]*Employee, error)
	ListByJobGrade(ctx context.Context, jobGradeID int64) ([]*Employee, error)
	ListActive(ctx context.Context) ([]*Employee, error)
	FindByEmployeeNumber(ctx context.Context, employeeNumber string) (*Employee, error)
	IsEmployeeNumberUnique(ctx context.Context, employeeNumber string, excludeID *int64) (bool, error)
	IsDuplicateEmail(ctx context.Context, email string, excludeID *int64) (bool, error)
	FindDeleted(ctx context.Context, id int64) (*Employee, error)
	ListRecent(ctx context.Context, count int) ([]*Employee, error)
	CountByDepartment(ctx context.Context, departmentID int64) (int, error)
	CountByJobGrade(ctx context.Context, jobGradeID int64) (int, error)
}

// Filter は一覧・件数取得で共通の絞り込み条件です。
type Filter struct {
	// SearchTerm は前後の空白を除去済みの検索語です。空文字は絞り込みなしです。
	SearchTerm   string
	DepartmentID *int64
	JobGradeID   *int64
}

// Page は 1 始まりのページ指定です。
type Page struct {
	Number int
	Size   int
}

// Offset はスキップする行数を返します。
// 桁あふれする場合は math.MaxInt に飽和させ、空のページになります。
func (p Page) Offset() int {
	if p.Number <= 1 || p.Size <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}
