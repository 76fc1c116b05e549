package server

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/qgen/internal/library"
	"github.com/abhisek/qgen/internal/qgen"
)

// Generator is the part of qgen.Service the HTTP surface uses.
type Generator interface {
	GenerateQuestions(ctx context.Context, req qgen.Request) ([]qgen.GeneratedQuestion, error)
	GenerateSingleQuestion(ctx context.Context, req qgen.Request) (*qgen.GeneratedQuestion, error)
	Contexts() []library.Context
	Templates() []library.Template
}

var _ Generator = (*qgen.Service)(nil)

type handlers struct {
	gen Generator
}

// bind decodes a JSON request body; malformed input is a validation error.
func bind(c *gin.Context) (qgen.Request, bool) {
	var req qgen.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &qgen.ValidationError{Field: "body", Message: fmt.Sprintf("invalid JSON body: %v", err)})
		return req, false
	}
	return req, true
}

func (h *handlers) generate(c *gin.Context) {
	req, ok := bind(c)
	if !ok {
		return
	}
	questions, err := h.gen.GenerateQuestions(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, questions)
}

func (h *handlers) generateSingle(c *gin.Context) {
	req, ok := bind(c)
	if !ok {
		return
	}
	q, err := h.gen.GenerateSingleQuestion(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, q)
}

func (h *handlers) contexts(c *gin.Context) {
	respondOK(c, h.gen.Contexts())
}

func (h *handlers) templates(c *gin.Context) {
	respondOK(c, h.gen.Templates())
}

func healthz(c *gin.Context) {
	respondOK(c, gin.H{"status": "ok"})
}
