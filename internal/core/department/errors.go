package department

import (
	"errors"

	"github.com/ogurasousui/payroll-api/internal/core/domainerr"
)

// ErrInvalidID は ID が不正な場合に返却されます。
var ErrInvalidID = errors.New("department: invalid id")

// NewNotFound は部署が存在しない場合のエラーを生成します。
func NewNotFound(id any) error {
	return domainerr.NewNotFound(EntityName, id)
}
