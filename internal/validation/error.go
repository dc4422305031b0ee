package validation

// AggregateError carries every validation error of a rejected request under
// one fixed top-level message.
type AggregateError struct {
	Errors []Error
}

func (e *AggregateError) Error() string {
	return "request is invalid"
}
