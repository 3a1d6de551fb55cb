package datasource

import (
	"errors"
	"fmt"
)

// Kind classifies a failed read.
type Kind string

const (
	KindNotFound Kind = "not_found"
	KindNetwork  Kind = "network"
	KindParsing  Kind = "parsing"
)

// Sentinels for errors.Is matching against a *DataError.
var (
	ErrNotFound = errors.New("resource not found")
	ErrNetwork  = errors.New("network error")
	ErrParsing  = errors.New("parsing error")
)

// DataError carries the failure class, the file it concerns and the
// underlying detail.
type DataError struct {
	Kind    Kind
	File    string
	Message string
	Details string
	Err     error
}

func (e *DataError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrParsing:
		return e.Kind == KindParsing
	}
	return false
}

// KindOf returns the kind of a *DataError anywhere in err's chain, or ""
// when err is not one.
func KindOf(err error) Kind {
	var de *DataError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
