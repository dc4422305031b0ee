// Package grpcx maps repository and validation failures onto gRPC status
// codes for transports built on the handler contract. Aggregated validation
// errors travel as a BadRequest detail so clients get the full structured
// error list, not just a message.
package grpcx

import (
	"errors"
	"strings"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/revkeeper/internal/common"
	"github.com/dmitrijs2005/revkeeper/internal/validation"
)

// Error converts err into a gRPC status error.
//
// Validation aggregates become InvalidArgument with one BadRequest field
// violation per collected error (path segments joined with '.').
// Repository precondition errors map onto their natural codes; anything
// else, including store I/O failures, is Internal.
func Error(err error) error {
	if err == nil {
		return nil
	}

	var agg *validation.AggregateError
	if errors.As(err, &agg) {
		st := status.New(codes.InvalidArgument, agg.Error())
		detailed, derr := st.WithDetails(badRequest(agg))
		if derr != nil {
			return st.Err()
		}
		return detailed.Err()
	}

	switch {
	case errors.Is(err, common.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrMissingKey), errors.Is(err, common.ErrInvalidStatus):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func badRequest(agg *validation.AggregateError) *errdetails.BadRequest {
	br := &errdetails.BadRequest{}
	for _, e := range agg.Errors {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       strings.Join(e.Path, "."),
			Reason:      strings.ToUpper(string(e.Kind)),
			Description: e.Message,
		})
	}
	return br
}
