package handler

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/payroll-api/internal/core/domainerr"
	"github.com/ogurasousui/payroll-api/internal/core/employee"
)

func toStatusError(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	if invalid, ok := domainerr.AsInvalidState(err); ok {
		st := status.New(codes.FailedPrecondition, invalid.Error())
		violations := make([]*errdetails.PreconditionFailure_Violation, 0, len(invalid.Errors))
		for _, msg := range invalid.Errors {
			violations = append(violations, &errdetails.PreconditionFailure_Violation{
				Type:        "PAYROLL_INVARIANT",
				Subject:     invalid.Entity,
				Description: msg,
			})
		}
		if withDetails, detailErr := st.WithDetails(&errdetails.PreconditionFailure{Violations: violations}); detailErr == nil {
			st = withDetails
		}
		return st.Err()
	}

	switch {
	case errors.Is(err, domainerr.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidPage),
		errors.Is(err, employee.ErrInvalidPageSize),
		errors.Is(err, employee.ErrInvalidCount),
		errors.Is(err, employee.ErrInvalidSearchTerm),
		errors.Is(err, employee.ErrInvalidEmployeeNumber),
		errors.Is(err, employee.ErrInvalidEmail),
		errors.Is(err, employee.ErrInvalidDepartmentID),
		errors.Is(err, employee.ErrInvalidJobGradeID):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
