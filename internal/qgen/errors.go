package qgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/qgen/internal/library"
)

// ValidationError indicates a malformed generation request. It is raised
// before any matching work starts.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Stage names a narrowing step of the matcher.
type Stage string

const (
	StageContext  Stage = "context"
	StageGoal     Stage = "goal"
	StageTemplate Stage = "template"
)

// Sentinels for errors.Is against a NoCompatibleError.
var (
	ErrNoCompatibleContext  = errors.New("no compatible context")
	ErrNoCompatibleGoal     = errors.New("no compatible goal")
	ErrNoCompatibleTemplate = errors.New("no compatible template")
)

// NoCompatibleError indicates that a matcher stage produced an empty set
// for the requested skills. It points at a coverage gap in the library.
type NoCompatibleError struct {
	Stage  Stage
	Skills library.SkillSet
}

func (e *NoCompatibleError) Error() string {
	return fmt.Sprintf("no compatible %s for skills %s", e.Stage, e.Skills)
}

// Is matches the sentinel for the failing stage.
func (e *NoCompatibleError) Is(target error) bool {
	switch e.Stage {
	case StageContext:
		return target == ErrNoCompatibleContext
	case StageGoal:
		return target == ErrNoCompatibleGoal
	case StageTemplate:
		return target == ErrNoCompatibleTemplate
	}
	return false
}

// ConstraintUnsatisfiableError indicates the value generator ran out of
// attempts. Last describes the final rejected draw.
type ConstraintUnsatisfiableError struct {
	TemplateID string
	Attempts   int
	Last       string
}

func (e *ConstraintUnsatisfiableError) Error() string {
	id := e.TemplateID
	if id == "" {
		id = "(unnamed)"
	}
	return fmt.Sprintf("template %s: constraints unsatisfied after %d attempts (last: %s)", id, e.Attempts, e.Last)
}

// UnresolvedPlaceholderError indicates a template token with no bound
// value. This is a data error in the template, never a runtime condition.
type UnresolvedPlaceholderError struct {
	TemplateID   string
	Placeholders []string
}

func (e *UnresolvedPlaceholderError) Error() string {
	names := make([]string, len(e.Placeholders))
	for i, p := range e.Placeholders {
		names[i] = "{" + p + "}"
	}
	if e.TemplateID == "" {
		return "unresolved placeholders: " + strings.Join(names, ", ")
	}
	return fmt.Sprintf("template %s: unresolved placeholders: %s", e.TemplateID, strings.Join(names, ", "))
}

// ExternalServiceError wraps any failure of the answer synthesizer.
type ExternalServiceError struct {
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("answer synthesis failed: %v", e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// Error codes reported to API clients.
const (
	CodeValidation            = "validation_error"
	CodeNoCompatibleContext   = "no_compatible_context"
	CodeNoCompatibleGoal      = "no_compatible_goal"
	CodeNoCompatibleTemplate  = "no_compatible_template"
	CodeConstraintUnsatisfied = "constraint_unsatisfiable"
	CodeUnresolvedPlaceholder = "unresolved_placeholder"
	CodeExternalService       = "external_service_error"
	CodeInternal              = "internal_error"
)

// ErrorCode classifies err into one of the Code constants.
func ErrorCode(err error) string {
	var (
		validation *ValidationError
		noMatch    *NoCompatibleError
		unsat      *ConstraintUnsatisfiableError
		unresolved *UnresolvedPlaceholderError
		external   *ExternalServiceError
	)
	switch {
	case errors.As(err, &validation):
		return CodeValidation
	case errors.As(err, &noMatch):
		switch noMatch.Stage {
		case StageContext:
			return CodeNoCompatibleContext
		case StageGoal:
			return CodeNoCompatibleGoal
		default:
			return CodeNoCompatibleTemplate
		}
	case errors.As(err, &external):
		return CodeExternalService
	case errors.As(err, &unsat):
		return CodeConstraintUnsatisfied
	case errors.As(err, &unresolved):
		return CodeUnresolvedPlaceholder
	}
	return CodeInternal
}
