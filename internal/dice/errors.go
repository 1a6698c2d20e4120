package dice

import "fmt"

// ParseError is the single error kind reported for every formula failure:
// lexical errors, grammar violations, out-of-range dice parameters,
// division by zero, and API-level rejections. Callers distinguish cases by
// message only; there is deliberately no error sub-taxonomy.
type ParseError struct {
	Message string
}

// Error returns the human-readable failure message.
func (e *ParseError) Error() string {
	return e.Message
}

func parseErrorf(format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}
