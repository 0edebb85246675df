package mirror

import "fmt"

// QueryErrorKind distinguishes how caller-supplied SQL failed.
type QueryErrorKind string

const (
	// QuerySyntax means the statement failed to prepare: malformed SQL
	// or an unknown table or column.
	QuerySyntax QueryErrorKind = "syntax"

	// QueryExecution means row iteration failed after a successful
	// prepare, for example a type mismatch during fetch.
	QueryExecution QueryErrorKind = "execution"
)

// QueryError is a caller-class failure: the request's own SQL was at
// fault, not the service or its dependencies.
type QueryError struct {
	Kind QueryErrorKind
	Err  error
}

func (e *QueryError) Error() string {
	return e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// RefreshError is an internal-class failure: the upstream fetch or the
// mirror replacement failed while handling a request the caller phrased
// correctly.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh mirror: %v", e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}
