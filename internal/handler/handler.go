// Package handler defines the request-handling contract: a handler owns a
// validator for its request type and the logic invoked once the request is
// known to be well-formed.
package handler

import (
	"context"

	"github.com/dmitrijs2005/revkeeper/internal/validation"
)

// Validator checks the shape of a request. The returned result aggregates
// every field problem; the error return is for infrastructure failures
// during validation (e.g. an existence lookup), not for invalid input.
type Validator[Req any] interface {
	Validate(ctx context.Context, req Req) (*validation.Result, error)
}

// Handler serves one logical operation.
type Handler[Req, Resp any] interface {
	Validator() Validator[Req]
	Handle(ctx context.Context, req Req) (Resp, error)
}

// Run composes a handler's validator and logic: validate, reject invalid
// requests with the aggregate validation error, otherwise handle.
func Run[Req, Resp any](ctx context.Context, h Handler[Req, Resp], req Req) (Resp, error) {
	var zero Resp

	result, err := h.Validator().Validate(ctx, req)
	if err != nil {
		return zero, err
	}
	if err := result.Err(); err != nil {
		return zero, err
	}

	return h.Handle(ctx, req)
}
