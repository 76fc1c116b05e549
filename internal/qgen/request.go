package qgen

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/abhisek/qgen/internal/library"
)

// Level is a PAES mathematics competency level.
type Level string

const (
	LevelM1 Level = "M1"
	LevelM2 Level = "M2"
)

// Subject is a PAES mathematics strand, spelled in Spanish.
type Subject string

const (
	SubjectNumbers     Subject = "números"
	SubjectAlgebra     Subject = "álgebra"
	SubjectGeometry    Subject = "geometría"
	SubjectProbability Subject = "probabilidad"
)

// Subjects lists the accepted subjects.
var Subjects = []Subject{SubjectNumbers, SubjectAlgebra, SubjectGeometry, SubjectProbability}

// MaxQuestions is the largest batch a single request may ask for.
const MaxQuestions = 10

// Request is the input of a generation call.
type Request struct {
	TargetSkills      []string `json:"targetSkills"`
	NumberOfQuestions int      `json:"numberOfQuestions"`
	Level             Level    `json:"level"`
	Subject           Subject  `json:"subject"`

	// Seed makes the output reproducible. When nil a random seed is used.
	Seed *uint64 `json:"seed,omitempty"`
}

// Validate checks a batch request and normalises it in place: skill codes
// and the subject are NFC-normalised and trimmed, and duplicate skills are
// collapsed.
func (r *Request) Validate() error {
	return r.validate(true)
}

func (r *Request) validate(batch bool) error {
	if len(r.TargetSkills) == 0 {
		return &ValidationError{Field: "targetSkills", Message: "at least one skill is required"}
	}
	skills := make([]string, 0, len(r.TargetSkills))
	seen := make(map[string]bool, len(r.TargetSkills))
	for i, s := range r.TargetSkills {
		s = normalize(s)
		if s == "" {
			return &ValidationError{Field: "targetSkills", Message: fmt.Sprintf("skill %d is blank", i)}
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		skills = append(skills, s)
	}

	if batch && (r.NumberOfQuestions < 1 || r.NumberOfQuestions > MaxQuestions) {
		return &ValidationError{
			Field:   "numberOfQuestions",
			Message: fmt.Sprintf("must be between 1 and %d, got %d", MaxQuestions, r.NumberOfQuestions),
		}
	}

	level := Level(strings.TrimSpace(string(r.Level)))
	if level != LevelM1 && level != LevelM2 {
		return &ValidationError{Field: "level", Message: fmt.Sprintf("must be %q or %q, got %q", LevelM1, LevelM2, r.Level)}
	}

	subject := Subject(normalize(string(r.Subject)))
	if !validSubject(subject) {
		return &ValidationError{Field: "subject", Message: fmt.Sprintf("unknown subject %q", r.Subject)}
	}

	r.TargetSkills = skills
	r.Level = level
	r.Subject = subject
	return nil
}

// Skills returns the requested skills as a set.
func (r Request) Skills() library.SkillSet {
	return library.SkillSetOf(r.TargetSkills...)
}

func validSubject(s Subject) bool {
	for _, known := range Subjects {
		if s == known {
			return true
		}
	}
	return false
}

// normalize composes accents so "álgebra" typed with a combining acute
// compares equal to the precomposed form.
func normalize(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
