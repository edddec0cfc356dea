package jobgrade

import (
	"errors"

	"github.com/ogurasousui/payroll-api/internal/core/domainerr"
)

// ErrInvalidID は ID が不正な場合に返却されます。
var ErrInvalidID = errors.New("job grade: invalid id")

// NewNotFound は等級が存在しない場合のエラーを生成します。
func NewNotFound(id any) error {
	return domainerr.NewNotFound(EntityName, id)
}
