package department

import (
	"context"
	"fmt"
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

// Service は部署に関するユースケースをまとめます。
type Service struct {
	repo    Repository
	counter EmployeeCounter
	tx      TransactionManager
}

// UseCase は部署ユースケースの公開インターフェースです。
type UseCase interface {
	ListDepartments(ctx context.Context) ([]*Summary, error)
	GetDepartment(ctx context.Context, id int64) (*Summary, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, counter EmployeeCounter, tx TransactionManager) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, counter: counter, tx: tx}
}

// ListDepartments は部署を名前順に、在籍社員数付きで返します。
func (s *Service) ListDepartments(ctx context.Context) ([]*Summary, error) {
	summaries := make([]*Summary, 0)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		departments, err := s.repo.List(txCtx)
		if err != nil {
			return err
		}

		for _, d := range departments {
			count, err := s.counter.CountByDepartment(txCtx, d.ID)
			if err != nil {
				return fmt.Errorf("count employees of department %d: %w", d.ID, err)
			}
			summaries = append(summaries, &Summary{Department: d, EmployeeCount: count})
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return summaries, nil
}

// GetDepartment は部署を取得します。存在しない場合は NotFound エラーです。
func (s *Service) GetDepartment(ctx context.Context, id int64) (*Summary, error) {
	if id <= 0 {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Summary
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		d, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		count, err := s.counter.CountByDepartment(txCtx, id)
		if err != nil {
			return err
		}

		result = &Summary{Department: d, EmployeeCount: count}
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}
