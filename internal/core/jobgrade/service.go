package jobgrade

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

// Service は等級に関するユースケースをまとめます。
type Service struct {
	repo    Repository
	counter EmployeeCounter
	tx      TransactionManager
}

// UseCase は等級ユースケースの公開インターフェースです。
type UseCase interface {
	ListJobGrades(ctx context.Context) ([]*Summary, error)
	GetJobGrade(ctx context.Context, id int64) (*Summary, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, counter EmployeeCounter, tx TransactionManager) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, counter: counter, tx: tx}
}

// ListJobGrades は等級を下限給与の昇順で、所属社員数付きで返します。
func (s *Service) ListJobGrades(ctx context.Context) ([]*Summary, error) {
	summaries := make([]*Summary, 0)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		grades, err := s.repo.List(txCtx)
		if err != nil {
			return err
		}

		for _, g := range grades {
			count, err := s.counter.CountByJobGrade(txCtx, g.ID)
			if err != nil {
				return fmt.Errorf("count employees of job grade %d: %w", g.ID, err)
			}
			summaries = append(summaries, &Summary{JobGrade: g, EmployeeCount: count})
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return summaries, nil
}

// GetJobGrade は等級を取得します。存在しない場合は NotFound エラーです。
func (s *Service) GetJobGrade(ctx context.Context, id int64) (*Summary, error) {
	if id <= 0 {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Summary
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		g, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		count, err := s.counter.CountByJobGrade(txCtx, id)
		if err != nil {
			return err
		}

		result = &Summary{JobGrade: g, EmployeeCount: count}
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}
