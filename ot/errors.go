package ot

import (
	"errors"
	"fmt"
)

// ErrorKind classifies errors raised while assembling a font.
type ErrorKind int

const (
	// ConfigurationError: unsupported style parameters or missing template sections.
	// Fatal, aborts the build.
	ConfigurationError ErrorKind = iota
	// PatternAuthoringError: a mistake in hand-authored pattern files. Fatal.
	PatternAuthoringError
	// MissingGlyph: a character or pattern target absent from the base font.
	// Recoverable, the affected item is skipped.
	MissingGlyph
	// BudgetExceeded: the glyph table outgrew the 16-bit glyph id space. Fatal.
	BudgetExceeded
)

// String returns a human-readable representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ConfigurationError:
		return "CONFIG"
	case PatternAuthoringError:
		return "PATTERN"
	case MissingGlyph:
		return "MISSING"
	case BudgetExceeded:
		return "BUDGET"
	default:
		return "UNKNOWN"
	}
}

// Fatal reports whether errors of this kind abort a build.
func (k ErrorKind) Fatal() bool {
	return k != MissingGlyph
}

// BuildError represents an error encountered while assembling a font.
// Subject names the offending character, phrase, glyph or parameter.
type BuildError struct {
	Kind    ErrorKind // classification
	Subject string    // offending character / phrase / index / parameter
	Issue   string    // human-readable description of the issue
	Count   int       // actual glyph count for BudgetExceeded, 0 otherwise
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("[%s] %s", e.Kind, e.Issue)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Subject, e.Issue)
}

// Is matches any BuildError of the same kind, so that
//
//	errors.Is(err, ot.ErrPatternAuthoring)
//
// holds for every pattern authoring error, whatever its subject.
func (e *BuildError) Is(target error) bool {
	var t *BuildError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for use with errors.Is.
var (
	ErrConfiguration    = &BuildError{Kind: ConfigurationError, Issue: "configuration error"}
	ErrPatternAuthoring = &BuildError{Kind: PatternAuthoringError, Issue: "pattern authoring error"}
	ErrMissingGlyph     = &BuildError{Kind: MissingGlyph, Issue: "missing glyph"}
	ErrBudgetExceeded   = &BuildError{Kind: BudgetExceeded, Issue: "glyph budget exceeded"}
)

// Errorf creates a BuildError of a given kind.
func Errorf(kind ErrorKind, subject string, format string, args ...any) *BuildError {
	return &BuildError{
		Kind:    kind,
		Subject: subject,
		Issue:   fmt.Sprintf(format, args...),
	}
}

// KindOf returns the kind of a BuildError found in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *BuildError
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Warning represents a recoverable condition. The affected item has been
// skipped and the build went on.
type Warning struct {
	Kind    ErrorKind
	Subject string
	Issue   string
}

// String returns a human-readable representation of the warning.
func (w Warning) String() string {
	return fmt.Sprintf("[WARNING] %s: %s", w.Subject, w.Issue)
}

// Warnings accumulates warnings during one build stage.
type Warnings struct {
	list []Warning
}

// Add records a warning and traces it.
func (ws *Warnings) Add(kind ErrorKind, subject string, format string, args ...any) {
	w := Warning{Kind: kind, Subject: subject, Issue: fmt.Sprintf(format, args...)}
	tracer().Debugf("%s", w)
	ws.list = append(ws.list, w)
}

// Merge appends the warnings of another collector.
func (ws *Warnings) Merge(other []Warning) {
	ws.list = append(ws.list, other...)
}

// List returns all warnings recorded so far.
func (ws *Warnings) List() []Warning {
	return ws.list
}

// Len returns the number of warnings recorded.
func (ws *Warnings) Len() int {
	return len(ws.list)
}
