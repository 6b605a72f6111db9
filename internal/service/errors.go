package service

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Leganyst/clinic-booking/internal/scheduling"
)

// toStatus переводит ошибку ядра в gRPC-статус.
// Внутренние ошибки наружу не раскрываются.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var e *scheduling.Error
	if !errors.As(err, &e) {
		return status.Error(codes.Internal, scheduling.MsgInternal)
	}

	switch e.Kind {
	case scheduling.KindValidation:
		return validationStatus(e.Message, e.Fields)
	case scheduling.KindNotFound:
		return status.Error(codes.NotFound, e.Message)
	case scheduling.KindForbidden:
		return status.Error(codes.PermissionDenied, e.Message)
	case scheduling.KindUnauthorized:
		return status.Error(codes.Unauthenticated, e.Message)
	case scheduling.KindConflict:
		return status.Error(codes.AlreadyExists, e.Message)
	case scheduling.KindInvalidState:
		return status.Error(codes.FailedPrecondition, e.Message)
	case scheduling.KindInternal:
	}
	return status.Error(codes.Internal, scheduling.MsgInternal)
}

func validationStatus(msg string, fields []scheduling.FieldError) error {
	st := status.New(codes.InvalidArgument, msg)
	if len(fields) == 0 {
		return st.Err()
	}
	br := &errdetails.BadRequest{}
	for _, f := range fields {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       f.Field,
			Description: f.Message,
		})
	}
	if detailed, err := st.WithDetails(br); err == nil {
		return detailed.Err()
	}
	return st.Err()
}
