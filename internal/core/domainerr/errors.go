package domainerr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound は必須エンティティが存在しないことを表します。
	ErrNotFound = errors.New("entity not found")
	// ErrInvalidState はエンティティがドメイン上の不変条件を満たさないことを表します。
	ErrInvalidState = errors.New("entity in invalid state")
)

// NotFoundError はエンティティ名と識別子を保持する not-found エラーです。
type NotFoundError struct {
	Entity string
	ID     any
}

// NewNotFound は NotFoundError を生成します。
func NewNotFound(entity string, id any) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("entity %q (%v) was not found", e.Entity, e.ID)
}

// Is は errors.Is(err, ErrNotFound) を満たすために実装しています。
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InvalidStateError は検証に失敗したエンティティとその理由の一覧を保持します。
type InvalidStateError struct {
	Entity string
	ID     any
	Errors []string
}

// NewInvalidState は InvalidStateError を生成します。errs が nil の場合は空スライスになります。
func NewInvalidState(entity string, id any, errs ...string) *InvalidStateError {
	if errs == nil {
		errs = []string{}
	}
	return &InvalidStateError{Entity: entity, ID: id, Errors: errs}
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("entity %q with ID %v is in an invalid state", e.Entity, e.ID)
}

// Is は errors.Is(err, ErrInvalidState) を満たすために実装しています。
func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// AsNotFound は err の連鎖から NotFoundError を取り出します。
func AsNotFound(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf, true
	}
	return nil, false
}

// AsInvalidState は err の連鎖から InvalidStateError を取り出します。
func AsInvalidState(err error) (*InvalidStateError, bool) {
	var is *InvalidStateError
	if errors.As(err, &is) {
		return is, true
	}
	return nil, false
}
