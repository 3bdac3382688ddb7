package recovery

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Stage identifies a step of the recovery pipeline.
type Stage string

const (
	StageNormalize  Stage = "normalize"
	StageStrict     Stage = "strict_parse"
	StageHeuristic  Stage = "heuristic_repair"
	StageTruncation Stage = "truncation_repair"
	StageValidate   Stage = "validate"
)

// FailureKind classifies a fatal pipeline failure.
type FailureKind string

const (
	// FailureNoArrayFound means the reply contains no bracket-delimited region.
	FailureNoArrayFound FailureKind = "no_array_found"
	// FailureUnrecoverable means every repair stage was exhausted.
	FailureUnrecoverable FailureKind = "unrecoverable"
	// FailureNotAnArray means the parsed top-level value is not an array.
	FailureNotAnArray FailureKind = "not_an_array"
	// FailureValidation means an element does not match the record schema.
	FailureValidation FailureKind = "validation"
)

// Sentinel errors matched by [FailureReport] through errors.Is.
var (
	ErrNoArrayFound  = errors.New("no array found in reply")
	ErrUnrecoverable = errors.New("reply could not be recovered")
	ErrNotAnArray    = errors.New("reply is not an array")
	ErrValidation    = errors.New("record validation failed")
)

// Position locates a syntax error in a candidate text. Offset is a byte
// offset; Line and Column are 1-based.
type Position struct {
	Offset int64 `json:"offset"`
	Line   int   `json:"line"`
	Column int   `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d (offset %d)", p.Line, p.Column, p.Offset)
}

// Attempt records one parse attempt for diagnostics: which stage produced
// the candidate, how large it was, and the syntax error if parsing failed.
type Attempt struct {
	Stage Stage        `json:"stage"`
	Bytes int          `json:"bytes"`
	Error *SyntaxError `json:"error,omitempty"`
}

// FailureReport describes why a reply could not be turned into records. It
// implements error and matches the package sentinels with errors.Is.
type FailureReport struct {
	Kind     FailureKind `json:"kind"`
	Stage    Stage       `json:"stage"`
	Message  string      `json:"message"`
	Position *Position   `json:"position,omitempty"`

	// Index is the zero-based element index of a validation failure, -1 otherwise.
	Index  int    `json:"index"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`

	// Reconstructed is the best-effort candidate text when every repair
	// stage was exhausted.
	Reconstructed string    `json:"reconstructed,omitempty"`
	Attempts      []Attempt `json:"attempts,omitempty"`

	cause error
}

func (r *FailureReport) Error() string {
	switch r.Kind {
	case FailureValidation:
		if r.Field == "" {
			return fmt.Sprintf("%s: element %d: %s", ErrValidation, r.Index, r.Reason)
		}
		return fmt.Sprintf("%s: element %d, field %q: %s", ErrValidation, r.Index, r.Field, r.Reason)
	case FailureUnrecoverable:
		if r.Position != nil {
			return fmt.Sprintf("%s: %s at %s", ErrUnrecoverable, r.Message, r.Position)
		}
		return fmt.Sprintf("%s: %s", ErrUnrecoverable, r.Message)
	case FailureNotAnArray:
		return fmt.Sprintf("%s: %s", ErrNotAnArray, r.Message)
	default:
		return ErrNoArrayFound.Error()
	}
}

// Is matches the sentinel error for the report's kind.
func (r *FailureReport) Is(target error) bool {
	switch r.Kind {
	case FailureNoArrayFound:
		return target == ErrNoArrayFound
	case FailureUnrecoverable:
		return target == ErrUnrecoverable
	case FailureNotAnArray:
		return target == ErrNotAnArray
	case FailureValidation:
		return target == ErrValidation
	}
	return false
}

// Unwrap returns the underlying syntax error, if any.
func (r *FailureReport) Unwrap() error {
	return r.cause
}

// Outcome is the result of one recovery run: either Records, or a Failure.
// Stage names the parse stage that produced the records on success.
type Outcome struct {
	Records []Record       `json:"records"`
	Stage   Stage          `json:"stage,omitempty"`
	Failure *FailureReport `json:"failure,omitempty"`
}

// MarshalJSON always includes records on success, so an empty result shows
// as "records":[]. A failure carries no records field.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.Failure != nil {
		return json.Marshal(struct {
			Failure *FailureReport `json:"failure"`
		}{o.Failure})
	}
	records := o.Records
	if records == nil {
		records = []Record{}
	}
	return json.Marshal(struct {
		Records []Record `json:"records"`
		Stage   Stage    `json:"stage,omitempty"`
	}{records, o.Stage})
}

// OK reports whether the outcome carries records.
func (o Outcome) OK() bool {
	return o.Failure == nil
}

// Err returns the failure as an error, or nil on success.
func (o Outcome) Err() error {
	if o.Failure == nil {
		return nil
	}
	return o.Failure
}

func noArrayFound() *FailureReport {
	return &FailureReport{
		Kind:    FailureNoArrayFound,
		Stage:   StageNormalize,
		Message: "no '[' ... ']' region in reply",
		Index:   -1,
	}
}

func unrecoverable(last *SyntaxError, reconstructed, reason string, attempts []Attempt) *FailureReport {
	report := &FailureReport{
		Kind:          FailureUnrecoverable,
		Stage:         StageTruncation,
		Message:       reason,
		Index:         -1,
		Reconstructed: reconstructed,
		Attempts:      attempts,
	}
	if last != nil {
		pos := last.Position
		report.Position = &pos
		report.Message = fmt.Sprintf("%s: %s", reason, last.Message)
		report.cause = last
	}
	return report
}

func notAnArray(got string) *FailureReport {
	return &FailureReport{
		Kind:    FailureNotAnArray,
		Stage:   StageValidate,
		Message: "top-level value is " + got,
		Index:   -1,
	}
}

func validationFailure(index int, field, reason string) *FailureReport {
	return &FailureReport{
		Kind:    FailureValidation,
		Stage:   StageValidate,
		Message: reason,
		Index:   index,
		Field:   field,
		Reason:  reason,
	}
}
