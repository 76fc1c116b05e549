package synth

import (
	"strings"
	"testing"

	"github.com/abhisek/qgen/internal/qgen"
)

func validBundle() *qgen.AnswerBundle {
	return &qgen.AnswerBundle{
		Options:          []string{"12", "15", "18", "21"},
		OptionsLaTeX:     []string{"12", "15", "18", "21"},
		CorrectAnswer:    1,
		Explanation:      "Se suman 7 y 8.",
		ExplanationLaTeX: "7 + 8 = 15",
	}
}

func TestStructural_Valid(t *testing.T) {
	v := &StructuralValidator{}
	if err := v.Validate(validBundle(), qgen.SynthesisRequest{}, DefaultConfig()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestStructural_WithoutLaTeX(t *testing.T) {
	b := validBundle()
	b.OptionsLaTeX = nil
	b.ExplanationLaTeX = ""
	if err := (&StructuralValidator{}).Validate(b, qgen.SynthesisRequest{}, DefaultConfig()); err != nil {
		t.Fatalf("LaTeX is optional, got %v", err)
	}
}

func TestStructural_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*qgen.AnswerBundle)
		want   string
	}{
		{"too few options", func(b *qgen.AnswerBundle) { b.Options = b.Options[:3]; b.OptionsLaTeX = nil }, "expected 4 options, got 3"},
		{"empty option", func(b *qgen.AnswerBundle) { b.Options[2] = "  " }, "option 3 is empty"},
		{"long option", func(b *qgen.AnswerBundle) { b.Options[0] = strings.Repeat("x", maxOptionLen+1) }, "option 1 exceeds"},
		{"negative index", func(b *qgen.AnswerBundle) { b.CorrectAnswer = -1 }, "out of range"},
		{"index past end", func(b *qgen.AnswerBundle) { b.CorrectAnswer = 4 }, "out of range"},
		{"empty explanation", func(b *qgen.AnswerBundle) { b.Explanation = "" }, "explanation is empty"},
		{"long explanation", func(b *qgen.AnswerBundle) { b.Explanation = strings.Repeat("á", maxExplanationLen+1) }, "explanation exceeds"},
		{"latex mismatch", func(b *qgen.AnswerBundle) { b.OptionsLaTeX = b.OptionsLaTeX[:2] }, "2 LaTeX options for 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBundle()
			tt.mutate(b)
			err := (&StructuralValidator{}).Validate(b, qgen.SynthesisRequest{}, DefaultConfig())
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Validator != "structural" {
				t.Errorf("validator = %q", err.Validator)
			}
			if !strings.Contains(err.Message, tt.want) {
				t.Errorf("message %q does not mention %q", err.Message, tt.want)
			}
		})
	}
}

func TestStructural_ZeroNumOptionsAcceptsAnyCount(t *testing.T) {
	b := validBundle()
	b.Options = b.Options[:2]
	b.OptionsLaTeX = nil
	b.CorrectAnswer = 0
	if err := (&StructuralValidator{}).Validate(b, qgen.SynthesisRequest{}, Config{}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestDistinctOptions(t *testing.T) {
	tests := []struct {
		name    string
		options []string
		wantErr bool
	}{
		{"distinct", []string{"12", "15", "18", "21"}, false},
		{"same text", []string{"12", "15", "12", "21"}, true},
		{"equivalent fractions", []string{"1/2", "2/4", "3/4", "1"}, true},
		{"fraction and decimal", []string{"1/2", "0.5", "3/4", "1"}, true},
		{"comma decimal", []string{"0,5", "1/2", "3/4", "1"}, true},
		{"case and spacing", []string{"Mayor que", "mayor  que", "igual", "menor"}, true},
		{"text distinct", []string{"roja", "azul", "verde", "amarilla"}, false},
		{"negative vs positive", []string{"-3", "3", "0", "1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBundle()
			b.Options = tt.options
			err := (&DistinctOptionsValidator{}).Validate(b, qgen.SynthesisRequest{}, DefaultConfig())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
