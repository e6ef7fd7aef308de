package category

import (
	"errors"
	"fmt"
	"strings"

	"pathscategories/resolver/internal/domain"
)

var (
	ErrUnresolvedParent     = errors.New("unresolved parent")
	ErrCyclicAncestry       = errors.New("cyclic ancestry")
	ErrUnknownSelection     = errors.New("unknown selection")
	ErrMalformedStoredValue = errors.New("malformed stored value")
	ErrDuplicateID          = errors.New("duplicate category id")
)

// RecordError reports why a single record was left out of the forest
type RecordError struct {
	ID  domain.CategoryID
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("category %d: %v", e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// BuildError collects every record BuildTree could not resolve. The forest returned next to it is still
// valid and holds all other records.
type BuildError struct {
	Records []*RecordError
}

func (e *BuildError) Error() string {
	msgs := make([]string, 0, len(e.Records))
	for _, r := range e.Records {
		msgs = append(msgs, r.Error())
	}
	return fmt.Sprintf("failed to resolve %d categories: %s", len(e.Records), strings.Join(msgs, "; "))
}

func (e *BuildError) Unwrap() []error {
	errs := make([]error, len(e.Records))
	for i, r := range e.Records {
		errs[i] = r
	}
	return errs
}
