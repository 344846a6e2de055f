package market

import "fmt"

// SourceUnavailableError wraps any failure to obtain data from a
// source: unreachable host, non-2xx status, timeout, or a payload
// missing required fields. It is raised after a single bounded
// attempt; retry policy, if any, belongs to the caller.
type SourceUnavailableError struct {
	Source string
	Symbol string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable for %s: %v", e.Source, e.Symbol, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

func Unavailable(source, symbol string, err error) error {
	return &SourceUnavailableError{Source: source, Symbol: symbol, Err: err}
}
