package employee

import (
	"errors"

	"github.com/ogurasousui/payroll-api/internal/core/domainerr"
)

var (
	ErrInvalidID             = errors.New("employee: invalid id")
	ErrInvalidPage           = errors.New("employee: invalid page")
	ErrInvalidPageSize       = errors.New("employee: invalid page size")
	ErrInvalidCount          = errors.New("employee: invalid count")
	ErrInvalidSearchTerm     = errors.New("employee: invalid search term")
	ErrInvalidEmployeeNumber = errors.New("employee: invalid employee number")
	ErrInvalidEmail          = errors.New("employee: invalid email")
	ErrInvalidDepartmentID   = errors.New("employee: invalid department id")
	ErrInvalidJobGradeID     = errors.New("employee: invalid job grade id")
)

// NewNotFound は社員が存在しない場合のエラーを生成します。
func NewNotFound(id any) error {
	return domainerr.NewNotFound(EntityName, id)
}
