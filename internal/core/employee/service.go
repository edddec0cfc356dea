package employee

import (
	"context"
	"fmt"
	"strings"
)

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultListPageSize    = 20
	maxListPageSize        = 200
	defaultRecentCount     = 5
	maxRecentCount         = 100
	maxSearchTermRuneCount = 100
)

// Options はページングの既定値を上書きします。0 の項目は既定値のままです。
type Options struct {
	DefaultPageSize    int
	MaxPageSize        int
	DefaultRecentCount int
}

// Service は社員参照のユースケースをまとめます。
type Service struct {
	repo Repository
	tx   TransactionManager

	defaultPageSize    int
	maxPageSize        int
	defaultRecentCount int
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	ListAllEmployees(ctx context.Context) ([]*Employee, error)
	ListActiveEmployees(ctx context.Context) ([]*Employee, error)
	ListRecentEmployees(ctx context.Context, count int) ([]*Employee, error)
	ListByDepartment(ctx context.Context, departmentID int64) ([]*Employee, error)
	ListByJobGrade(ctx context.Context, jobGradeID int64) ([]*Employee, error)
	GetEmployee(ctx context.Context, id int64) (*Employee, error)
	FindEmployee(ctx context.Context, id int64) (*Employee, error)
	FindByEmployeeNumber(ctx context.Context, employeeNumber string) (*Employee, error)
	FindDeletedEmployee(ctx context.Context, id int64) (*Employee, error)
	IsEmployeeNumberUnique(ctx context.Context, in UniquenessInput) (bool, error)
	IsDuplicateEmail(ctx context.Context, in UniquenessInput) (bool, error)
	VerifyEmployee(ctx context.Context, id int64) (*Employee, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, tx TransactionManager, opts Options) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}

	s := &Service{
		repo:               repo,
		tx:                 tx,
		defaultPageSize:    defaultListPageSize,
		maxPageSize:        maxListPageSize,
		defaultRecentCount: defaultRecentCount,
	}
	if opts.MaxPageSize > 0 {
		s.maxPageSize = opts.MaxPageSize
	}
	if opts.DefaultPageSize > 0 && opts.DefaultPageSize <= s.maxPageSize {
		s.defaultPageSize = opts.DefaultPageSize
	}
	if opts.DefaultRecentCount > 0 && opts.DefaultRecentCount <= maxRecentCount {
		s.defaultRecentCount = opts.DefaultRecentCount
	}
	return s
}

// ListEmployeesInput は一覧取得時の入力です。Page と PageSize の 0 は既定値を意味します。
type ListEmployeesInput struct {
	Page         int
	PageSize     int
	SearchTerm   string
	DepartmentID *int64
	JobGradeID   *int64
}

// ListEmployeesResult は一覧取得結果とページ情報です。
type ListEmployeesResult struct {
	Employees  []*Employee
	TotalCount int
	Page       int
	PageSize   int
	TotalPages int
}

// UniquenessInput は重複チェックの入力です。ExcludeID は編集中の社員自身を除外するために使います。
type UniquenessInput struct {
	Value     string
	ExcludeID *int64
}

// ListEmployees は検索条件に一致する社員をページ単位で返します。
//
// 一覧と総件数は同一の読み取り専用トランザクション内で取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	page, err := normalizePage(in.Page)
	if err != nil {
		return nil, err
	}

	size, err := s.normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	filter, err := normalizeFilter(in)
	if err != nil {
		return nil, err
	}

	result := &ListEmployeesResult{Page: page, PageSize: size}
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		employees, err := s.repo.ListWithDetails(txCtx, filter, Page{Number: page, Size: size})
		if err != nil {
			return err
		}

		total, err := s.repo.Count(txCtx, filter)
		if err != nil {
			return err
		}

		result.Employees = employees
		result.TotalCount = total
		return nil
	}); err != nil {
		return nil, err
	}

	result.TotalPages = totalPages(result.TotalCount, size)
	return result, nil
}

// ListAllEmployees は全社員を氏名順で返します。
func (s *Service) ListAllEmployees(ctx context.Context) ([]*Employee, error) {
	return s.readMany(ctx, s.repo.ListAllWithDetails)
}

// ListActiveEmployees は在籍中の社員を返します。
func (s *Service) ListActiveEmployees(ctx context.Context) ([]*Employee, error) {
	return s.readMany(ctx, s.repo.ListActive)
}

// ListRecentEmployees は登録日時の新しい順に count 件の社員を返します。count が 0 の場合は既定値を使います。
func (s *Service) ListRecentEmployees(ctx context.Context, count int) ([]*Employee, error) {
	if count == 0 {
		count = s.defaultRecentCount
	}
	if count < 0 || count > maxRecentCount {
		return nil, ErrInvalidCount
	}

	return s.readMany(ctx, func(txCtx context.Context) ([]*Employee, error) {
		return s.repo.ListRecent(txCtx, count)
	})
}

// ListByDepartment は部署に所属する社員を返します。
func (s *Service) ListByDepartment(ctx context.Context, departmentID int64) ([]*Employee, error) {
	if departmentID <= 0 {
		return nil, ErrInvalidDepartmentID
	}
	return s.readMany(ctx, func(txCtx context.Context) ([]*Employee, error) {
		return s.repo.ListByDepartment(txCtx, departmentID)
	})
}

// ListByJobGrade は等級に属する社員を返します。
func (s *Service) ListByJobGrade(ctx context.Context, jobGradeID int64) ([]*Employee, error) {
	if jobGradeID <= 0 {
		return nil, ErrInvalidJobGradeID
	}
	return s.readMany(ctx, func(txCtx context.Context) ([]*Employee, error) {
		return s.repo.ListByJobGrade(txCtx, jobGradeID)
	})
}

// GetEmployee は詳細付きで社員を取得します。存在しない場合は NotFound エラーです。
func (s *Service) GetEmployee(ctx context.Context, id int64) (*Employee, error) {
	if id <= 0 {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.readOne(ctx, func(txCtx context.Context) (*Employee, error) {
		return s.repo.GetWithDetails(txCtx, id)
	})
}

// FindEmployee は GetEmployee と同じ詳細を返しますが、存在しない場合は nil, nil です。
func (s *Service) FindEmployee(ctx context.Context, id int64) (*Employee, error) {
	if id <= 0 {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.readOne(ctx, func(txCtx context.Context) (*Employee, error) {
		return s.repo.FindWithDetails(txCtx, id)
	})
}

// FindByEmployeeNumber は社員番号の完全一致で検索します。
func (s *Service) FindByEmployeeNumber(ctx context.Context, employeeNumber string) (*Employee, error) {
	number, err := normalizeEmployeeNumber(employeeNumber)
	if err != nil {
		return nil, err
	}
	return s.readOne(ctx, func(txCtx context.Context) (*Employee, error) {
		return s.repo.FindByEmployeeNumber(txCtx, number)
	})
}

// FindDeletedEmployee は論理削除済みの社員を取得します。
func (s *Service) FindDeletedEmployee(ctx context.Context, id int64) (*Employee, error) {
	if id <= 0 {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.readOne(ctx, func(txCtx context.Context) (*Employee, error) {
		return s.repo.FindDeleted(txCtx, id)
	})
}

// IsEmployeeNumberUnique は社員番号が未使用なら true を返します。
//
// 書き込み前の事前チェックであり、最終的な一意性はデータベースの一意制約が保証します。
func (s *Service) IsEmployeeNumberUnique(ctx context.Context, in UniquenessInput) (bool, error) {
	number, err := normalizeEmployeeNumber(in.Value)
	if err != nil {
		return false, err
	}
	if in.ExcludeID != nil && *in.ExcludeID <= 0 {
		return false, fmt.Errorf("exclude id: %w", ErrInvalidID)
	}

	var unique bool
	err = s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		unique, err = s.repo.IsEmployeeNumberUnique(txCtx, number, in.ExcludeID)
		return err
	})
	return unique, err
}

// IsDuplicateEmail はメールアドレスが他の社員で使用済みなら true を返します。
// IsEmployeeNumberUnique とは真偽の向きが逆である点に注意してください。
func (s *Service) IsDuplicateEmail(ctx context.Context, in UniquenessInput) (bool, error) {
	email := strings.TrimSpace(in.Value)
	if email == "" {
		return false, ErrInvalidEmail
	}
	if in.ExcludeID != nil && *in.ExcludeID <= 0 {
		return false, fmt.Errorf("exclude id: %w", ErrInvalidID)
	}

	var duplicate bool
	err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		duplicate, err = s.repo.IsDuplicateEmail(txCtx, email, in.ExcludeID)
		return err
	})
	return duplicate, err
}

func (s *Service) readMany(ctx context.Context, fn func(context.Context) ([]*Employee, error)) ([]*Employee, error) {
	var employees []*Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := fn(txCtx)
		if err != nil {
			return err
		}
		employees = found
		return nil
	}); err != nil {
		return nil, err
	}
	if employees == nil {
		employees = []*Employee{}
	}
	return employees, nil
}

func (s *Service) readOne(ctx context.Context, fn func(context.Context) (*Employee, error)) (*Employee, error) {
	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := fn(txCtx)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) normalizePageSize(pageSize int) (int, error) {
	if pageSize == 0 {
		return s.defaultPageSize, nil
	}
	if pageSize < 0 || pageSize > s.maxPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func normalizePage(page int) (int, error) {
	if page == 0 {
		return 1, nil
	}
	if page < 0 {
		return 0, ErrInvalidPage
	}
	return page, nil
}

func normalizeFilter(in ListEmployeesInput) (Filter, error) {
	term := strings.TrimSpace(in.SearchTerm)
	if len([]rune(term)) > maxSearchTermRuneCount {
		return Filter{}, ErrInvalidSearchTerm
	}
	if in.DepartmentID != nil && *in.DepartmentID <= 0 {
		return Filter{}, ErrInvalidDepartmentID
	}
	if in.JobGradeID != nil && *in.JobGradeID <= 0 {
		return Filter{}, ErrInvalidJobGradeID
	}
	return Filter{
		SearchTerm:   term,
		DepartmentID: in.DepartmentID,
		JobGradeID:   in.JobGradeID,
	}, nil
}

func normalizeEmployeeNumber(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmployeeNumber
	}
	return trimmed, nil
}

func totalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
