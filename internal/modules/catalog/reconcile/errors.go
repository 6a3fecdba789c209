package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoFormatSignal marks a canonical book whose contributing records
	// carry no physical, ebook or audio indicator. Such books violate the
	// covering rule and are rejected rather than defaulted.
	ErrNoFormatSignal = errors.New("no format signal present")

	// ErrIdentityAmbiguity marks an equivalence class holding two records
	// with conflicting strong identifiers; it is never merged silently.
	ErrIdentityAmbiguity = errors.New("conflicting strong identifiers")
)

type ErrorKind string

const (
	KindIdentityAmbiguity ErrorKind = "identity_ambiguity"
	KindClassification    ErrorKind = "classification"
	KindMapping           ErrorKind = "mapping"
)

// RecordError is a per-record (or per-class) failure. It excludes the
// named records from the run but never aborts it.
type RecordError struct {
	Kind ErrorKind
	// Refs lists the source:id pairs involved, all of them for an
	// ambiguity so the conflict is attributable.
	Refs []string
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Kind, strings.Join(e.Refs, ", "), e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }
