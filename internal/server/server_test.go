package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhisek/qgen/internal/library"
	"github.com/abhisek/qgen/internal/metrics"
	"github.com/abhisek/qgen/internal/qgen"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSynth struct {
	bundle *qgen.AnswerBundle
	err    error
}

func (s stubSynth) Synthesize(context.Context, qgen.SynthesisRequest) (*qgen.AnswerBundle, error) {
	return s.bundle, s.err
}

func bundle() *qgen.AnswerBundle {
	return &qgen.AnswerBundle{
		Options:       []string{"10", "11", "12", "13"},
		CorrectAnswer: 1,
		Explanation:   "Se suma.",
	}
}

func newTestRouter(t *testing.T, synth qgen.AnswerSynthesizer) (*gin.Engine, *metrics.Metrics) {
	t.Helper()
	lib, err := library.Default()
	require.NoError(t, err)
	m := metrics.New()
	svc, err := qgen.NewService(qgen.Options{Library: lib, Synthesizer: synth, SynthesisTimeout: time.Second, Recorder: m})
	require.NoError(t, err)
	return NewRouter(Options{Generator: svc, Metrics: m}), m
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Field   string          `json:"field"`
}

func do(t *testing.T, r http.Handler, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestGenerate_OK(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	code, env := do(t, r, http.MethodPost, "/api/qgen/generate",
		`{"targetSkills":["ecuaciones-lineales","despeje"],"numberOfQuestions":3,"level":"M1","subject":"álgebra"}`)

	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	var qs []qgen.GeneratedQuestion
	require.NoError(t, json.Unmarshal(env.Data, &qs))
	require.Len(t, qs, 3)
	for _, q := range qs {
		assert.Equal(t, qgen.DifficultyMedium, q.Difficulty)
		assert.Nil(t, q.CorrectAnswer)
		assert.Empty(t, q.Options)
		assert.Equal(t, qgen.LevelM1, q.Level)
		assert.NotEmpty(t, q.ID)
	}
}

func TestGenerate_Seeded(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	body := `{"targetSkills":["suma-basica"],"numberOfQuestions":2,"level":"M1","subject":"números","seed":7}`
	_, a := do(t, r, http.MethodPost, "/api/qgen/generate", body)
	_, b := do(t, r, http.MethodPost, "/api/qgen/generate", body)

	var qa, qb []qgen.GeneratedQuestion
	require.NoError(t, json.Unmarshal(a.Data, &qa))
	require.NoError(t, json.Unmarshal(b.Data, &qb))
	require.Len(t, qa, 2)
	for i := range qa {
		assert.Equal(t, qa[i].ID, qb[i].ID)
		assert.Equal(t, qa[i].Question, qb[i].Question)
	}
}

func TestGenerate_Errors(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	tests := []struct {
		name  string
		body  string
		code  string
		field string
	}{
		{"empty skills", `{"targetSkills":[],"numberOfQuestions":1,"level":"M1","subject":"números"}`, qgen.CodeValidation, "targetSkills"},
		{"too many", `{"targetSkills":["suma-basica"],"numberOfQuestions":11,"level":"M1","subject":"números"}`, qgen.CodeValidation, "numberOfQuestions"},
		{"bad level", `{"targetSkills":["suma-basica"],"numberOfQuestions":1,"level":"M3","subject":"números"}`, qgen.CodeValidation, "level"},
		{"malformed", `{"targetSkills":`, qgen.CodeValidation, "body"},
		{"no context", `{"targetSkills":["suma-basica","teorema-pitagoras","probabilidad-clasica"],"numberOfQuestions":1,"level":"M2","subject":"geometría"}`, qgen.CodeNoCompatibleContext, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, r, http.MethodPost, "/api/qgen/generate", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Code)
			assert.NotEmpty(t, env.Error)
			if tt.field != "" {
				assert.Equal(t, tt.field, env.Field)
			}
		})
	}
}

func TestGenerateSingle_OK(t *testing.T) {
	r, _ := newTestRouter(t, stubSynth{bundle: bundle()})
	status, env := do(t, r, http.MethodPost, "/api/qgen/generate-single",
		`{"targetSkills":["suma-basica"],"level":"M1","subject":"números"}`)

	require.Equal(t, http.StatusOK, status)
	var q qgen.GeneratedQuestion
	require.NoError(t, json.Unmarshal(env.Data, &q))
	require.NotNil(t, q.CorrectAnswer)
	assert.Equal(t, 1, *q.CorrectAnswer)
	assert.Equal(t, []string{"10", "11", "12", "13"}, q.Options)
	assert.Equal(t, "Se suma.", q.Explanation)

	code, metricsBody := scrape(t, r)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, metricsBody, `qgen_questions_generated_total{difficulty="easy",path="single"} 1`)
}

func TestGenerateSingle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		synth  qgen.AnswerSynthesizer
		body   string
		status int
		code   string
	}{
		{"synthesizer error", stubSynth{err: errors.New("upstream down")},
			`{"targetSkills":["suma-basica"],"level":"M1","subject":"números"}`, http.StatusInternalServerError, qgen.CodeExternalService},
		{"no synthesizer", nil,
			`{"targetSkills":["suma-basica"],"level":"M1","subject":"números"}`, http.StatusInternalServerError, qgen.CodeExternalService},
		{"no match", stubSynth{bundle: bundle()},
			`{"targetSkills":["integrales"],"level":"M2","subject":"álgebra"}`, http.StatusBadRequest, qgen.CodeNoCompatibleContext},
		{"bad subject", stubSynth{bundle: bundle()},
			`{"targetSkills":["suma-basica"],"level":"M1","subject":"historia"}`, http.StatusBadRequest, qgen.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRouter(t, tt.synth)
			status, env := do(t, r, http.MethodPost, "/api/qgen/generate-single", tt.body)
			assert.Equal(t, tt.status, status)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Code)
		})
	}
}

func TestListings(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	lib, err := library.Default()
	require.NoError(t, err)

	status, env := do(t, r, http.MethodGet, "/api/qgen/contexts", "")
	require.Equal(t, http.StatusOK, status)
	var contexts []library.Context
	require.NoError(t, json.Unmarshal(env.Data, &contexts))
	assert.Len(t, contexts, len(lib.Contexts()))
	assert.Equal(t, lib.Contexts()[0].ID, contexts[0].ID)

	status, env = do(t, r, http.MethodGet, "/api/qgen/templates", "")
	require.Equal(t, http.StatusOK, status)
	var templates []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &templates))
	assert.Len(t, templates, len(lib.Templates()))
	assert.Contains(t, templates[0], "templateText")
}

func TestHealthzAndNotFound(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	status, env := do(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, env = do(t, r, http.MethodGet, "/api/qgen/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", env.Code)
}

func TestCORS(t *testing.T) {
	lib, err := library.Default()
	require.NoError(t, err)
	svc, err := qgen.NewService(qgen.Options{Library: lib})
	require.NoError(t, err)

	t.Run("any origin", func(t *testing.T) {
		r := NewRouter(Options{Generator: svc})
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "https://cualquiera.cl")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("restricted", func(t *testing.T) {
		r := NewRouter(Options{Generator: svc, AllowedOrigins: []string{"https://paes.example.cl"}})
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "https://paes.example.cl")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "https://paes.example.cl", w.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "https://otro.cl")
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

// panicker blows up on every generation call.
type panicker struct{ Generator }

func (panicker) GenerateQuestions(context.Context, qgen.Request) ([]qgen.GeneratedQuestion, error) {
	panic("boom")
}

func TestRecovery(t *testing.T) {
	r := NewRouter(Options{Generator: panicker{}})
	status, env := do(t, r, http.MethodPost, "/api/qgen/generate", `{}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, qgen.CodeInternal, env.Code)
}

func TestStatusFor(t *testing.T) {
	tests := map[string]int{
		qgen.CodeValidation:            http.StatusBadRequest,
		qgen.CodeNoCompatibleContext:   http.StatusBadRequest,
		qgen.CodeNoCompatibleGoal:      http.StatusBadRequest,
		qgen.CodeNoCompatibleTemplate:  http.StatusBadRequest,
		qgen.CodeConstraintUnsatisfied: http.StatusInternalServerError,
		qgen.CodeUnresolvedPlaceholder: http.StatusInternalServerError,
		qgen.CodeExternalService:       http.StatusInternalServerError,
		qgen.CodeInternal:              http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, statusFor(code), code)
	}
}

func scrape(t *testing.T, r http.Handler) (int, string) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return w.Code, w.Body.String()
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, "127.0.0.1:0", http.NotFoundHandler(), time.Second, zap.NewNop())
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
