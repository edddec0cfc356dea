package department

import (
	"context"
	"errors"
	"testing"

	"github.com/ogurasousui/payroll-api/internal/core/domainerr"
)

type fakeDepartmentRepo struct {
	departments []*Department
}

func (r *fakeDepartmentRepo) List(context.Context) ([]*Department, error) {
	return r.departments, nil
}

func (r *fakeDepartmentRepo) FindByID(_ context.Context, id int64) (*Department, error) {
	for _, d := range r.departments {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, NewNotFound(id)
}

type fakeCounter struct {
	counts map[int64]int
	err    error
}

func (c *fakeCounter) CountByDepartment(_ context.Context, id int64) (int, error) {
	return c.counts[id], c.err
}

func TestService_ListDepartments(t *testing.T) {
	t.Parallel()

	repo := &fakeDepartmentRepo{departments: []*Department{{ID: 1, Name: "Engineering"}, {ID: 2, Name: "Finance"}}}
	svc := NewService(repo, &fakeCounter{counts: map[int64]int{1: 12}}, nil)

	got, err := svc.ListDepartments(context.Background())
	if err != nil {
		t.Fatalf("ListDepartments returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 departments, got %d", len(got))
	}
	if got[0].EmployeeCount != 12 || got[1].EmployeeCount != 0 {
		t.Fatalf("unexpected counts: %d, %d", got[0].EmployeeCount, got[1].EmployeeCount)
	}
}

func TestService_ListDepartments_CounterError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	repo := &fakeDepartmentRepo{departments: []*Department{{ID: 1, Name: "Engineering"}}}
	svc := NewService(repo, &fakeCounter{err: boom}, nil)

	if _, err := svc.ListDepartments(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected counter error, got %v", err)
	}
}

func TestService_GetDepartment(t *testing.T) {
	t.Parallel()

	repo := &fakeDepartmentRepo{departments: []*Department{{ID: 1, Name: "Engineering"}}}
	svc := NewService(repo, &fakeCounter{counts: map[int64]int{1: 3}}, nil)
	ctx := context.Background()

	got, err := svc.GetDepartment(ctx, 1)
	if err != nil {
		t.Fatalf("GetDepartment returned error: %v", err)
	}
	if got.Department.Name != "Engineering" || got.EmployeeCount != 3 {
		t.Fatalf("unexpected summary: %+v", got)
	}

	_, err = svc.GetDepartment(ctx, 9)
	nf, ok := domainerr.AsNotFound(err)
	if !ok || nf.Entity != "Department" || nf.ID != int64(9) {
		t.Fatalf("expected Department not found, got %v", err)
	}

	if _, err := svc.GetDepartment(ctx, 0); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}
