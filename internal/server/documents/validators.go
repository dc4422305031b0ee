package documents

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/revkeeper/internal/validation"
)

// validateKey checks that a request key is present and parses as a UUID.
// Returns the parsed key, or uuid.Nil when an error was recorded.
func validateKey(result *validation.Result, key string) uuid.UUID {
	if key == "" {
		result.AddRequired([]string{"key"}, "key is required")
		return uuid.Nil
	}
	parsed, err := uuid.Parse(key)
	if err != nil {
		result.AddInvalidFormat([]string{"key"}, "key is not a valid uuid")
		return uuid.Nil
	}
	if parsed == uuid.Nil {
		result.AddRequired([]string{"key"}, "key must not be the zero uuid")
		return uuid.Nil
	}
	return parsed
}

func validateContent(result *validation.Result, title string, tags []string) {
	if strings.TrimSpace(title) == "" {
		result.AddRequired([]string{"title"}, "title is required")
	}
	for i, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			result.AddInvalidFormat([]string{"tags", strconv.Itoa(i)}, "tag must not be blank")
		}
	}
}

type createValidator struct{}

func (createValidator) Validate(_ context.Context, req CreateRequest) (*validation.Result, error) {
	result := &validation.Result{}
	validateKey(result, req.Key)
	validateContent(result, req.Title, req.Tags)
	return result, nil
}

type updateValidator struct{}

func (updateValidator) Validate(_ context.Context, req UpdateRequest) (*validation.Result, error) {
	result := &validation.Result{}
	validateKey(result, req.Key)
	validateContent(result, req.Title, req.Tags)
	return result, nil
}

type keyOnlyValidator[Req interface{ key() string }] struct{}

func (keyOnlyValidator[Req]) Validate(_ context.Context, req Req) (*validation.Result, error) {
	result := &validation.Result{}
	validateKey(result, req.key())
	return result, nil
}

func (r GetRequest) key() string     { return r.Key }
func (r DeleteRequest) key() string  { return r.Key }
func (r HistoryRequest) key() string { return r.Key }
