package types

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies a stage failure. Every kind fails the run.
type ErrorKind int

const (
	ErrSourceRead ErrorKind = iota + 1
	ErrExtraction
	ErrTranscription
	ErrSubtitleBurn
	ErrDescriptionAPI
)

func (k ErrorKind) String() string {
	switch k {
	case ErrSourceRead:
		return "SourceReadError"
	case ErrExtraction:
		return "ExtractionError"
	case ErrTranscription:
		return "TranscriptionError"
	case ErrSubtitleBurn:
		return "SubtitleBurnError"
	case ErrDescriptionAPI:
		return "DescriptionAPIError"
	default:
		return "UnknownError"
	}
}

// StageError is the Err side of a stage outcome.
type StageError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewStageError wraps err with a stack trace unless it already carries one.
func NewStageError(kind ErrorKind, op string, err error) *StageError {
	if err == nil {
		err = errors.New(op + " failed")
	}
	if _, ok := err.(interface{ StackTrace() errors.StackTrace }); !ok {
		err = errors.WithStack(err)
	}
	return &StageError{Kind: kind, Op: op, Err: err}
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Format prints the wrapped stack with %+v.
func (e *StageError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s: %s: %+v", e.Kind, e.Op, e.Err)
		return
	}
	fmt.Fprint(s, e.Error())
}

// KindOf reports the kind of the first StageError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}
