package qgen

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/qgen/internal/library"
)

// DefaultSynthesisTimeout bounds a single answer synthesis call.
const DefaultSynthesisTimeout = 60 * time.Second

const tracerName = "github.com/abhisek/qgen/internal/qgen"

// Generation paths, used as metric labels.
const (
	PathBatch  = "batch"
	PathSingle = "single"
)

// Recorder receives domain metrics. Implementations must be safe for
// concurrent use.
type Recorder interface {
	QuestionGenerated(path, difficulty string)
	GenerationFailed(path, code string)
	SynthesisObserved(d time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) QuestionGenerated(string, string)       {}
func (nopRecorder) GenerationFailed(string, string)        {}
func (nopRecorder) SynthesisObserved(time.Duration, error) {}

// Options configures a Service. Only Library is required.
type Options struct {
	Library          *library.Library
	Synthesizer      AnswerSynthesizer
	Clock            func() time.Time
	MaxAttempts      int
	SynthesisTimeout time.Duration
	Logger           *zap.Logger
	Tracer           trace.Tracer
	Recorder         Recorder
}

// Service is the generation orchestrator. It holds no per-request state
// and is safe for concurrent use.
type Service struct {
	lib         *library.Library
	matcher     *Matcher
	synth       AnswerSynthesizer
	clock       func() time.Time
	maxAttempts int
	timeout     time.Duration
	log         *zap.Logger
	tracer      trace.Tracer
	rec         Recorder
}

// NewService builds a Service from opts, filling defaults.
func NewService(opts Options) (*Service, error) {
	if opts.Library == nil {
		return nil, errors.New("qgen: library is required")
	}
	s := &Service{
		lib:         opts.Library,
		matcher:     NewMatcher(opts.Library),
		synth:       opts.Synthesizer,
		clock:       opts.Clock,
		maxAttempts: opts.MaxAttempts,
		timeout:     opts.SynthesisTimeout,
		log:         opts.Logger,
		tracer:      opts.Tracer,
		rec:         opts.Recorder,
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = DefaultMaxAttempts
	}
	if s.timeout <= 0 {
		s.timeout = DefaultSynthesisTimeout
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	if s.rec == nil {
		s.rec = nopRecorder{}
	}
	return s, nil
}

// Library returns the library the service generates from.
func (s *Service) Library() *library.Library { return s.lib }

// Contexts returns the context library in declaration order.
func (s *Service) Contexts() []library.Context { return s.lib.Contexts() }

// Templates returns the template library in declaration order.
func (s *Service) Templates() []library.Template { return s.lib.Templates() }

// GenerateQuestions validates req, matches once for the batch and then
// builds NumberOfQuestions questions. Items are generated concurrently but
// each one depends only on (seed, index), so the result is the same for
// any execution order.
func (s *Service) GenerateQuestions(ctx context.Context, req Request) ([]GeneratedQuestion, error) {
	ctx, span := s.tracer.Start(ctx, "qgen.GenerateQuestions")
	defer span.End()

	out, err := s.generateBatch(ctx, req)
	if err != nil {
		s.fail(span, PathBatch, err)
		return nil, err
	}
	return out, nil
}

func (s *Service) generateBatch(ctx context.Context, req Request) ([]GeneratedQuestion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	m, err := s.match(ctx, req)
	if err != nil {
		return nil, err
	}
	seed := s.seed(req)

	out := make([]GeneratedQuestion, req.NumberOfQuestions)
	g, gctx := errgroup.WithContext(ctx)
	for i := range out {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			q, err := s.build(m, req, seed, i)
			if err != nil {
				return err
			}
			out[i] = *q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, q := range out {
		s.rec.QuestionGenerated(PathBatch, string(q.Difficulty))
	}
	s.log.Info("generated question batch",
		zap.Strings("skills", req.TargetSkills),
		zap.Int("count", len(out)),
		zap.String("template", m.Template.ID),
		zap.String("context", m.Context.ID),
		zap.Uint64("seed", seed),
	)
	return out, nil
}

// GenerateSingleQuestion builds one question and asks the synthesizer for
// its options and explanation. NumberOfQuestions is ignored. Any
// synthesizer failure fails the whole call; no partial question is
// returned.
func (s *Service) GenerateSingleQuestion(ctx context.Context, req Request) (*GeneratedQuestion, error) {
	ctx, span := s.tracer.Start(ctx, "qgen.GenerateSingleQuestion")
	defer span.End()

	q, err := s.generateSingle(ctx, req)
	if err != nil {
		s.fail(span, PathSingle, err)
		return nil, err
	}
	return q, nil
}

func (s *Service) generateSingle(ctx context.Context, req Request) (*GeneratedQuestion, error) {
	if err := req.validate(false); err != nil {
		return nil, err
	}
	m, err := s.match(ctx, req)
	if err != nil {
		return nil, err
	}
	q, err := s.build(m, req, s.seed(req), 0)
	if err != nil {
		return nil, err
	}

	bundle, err := s.synthesize(ctx, m, q)
	if err != nil {
		return nil, err
	}
	correct := bundle.CorrectAnswer
	q.Options = bundle.Options
	q.OptionsLaTeX = bundle.OptionsLaTeX
	q.CorrectAnswer = &correct
	q.Explanation = bundle.Explanation
	q.ExplanationLaTeX = bundle.ExplanationLaTeX

	s.rec.QuestionGenerated(PathSingle, string(q.Difficulty))
	s.log.Info("generated question",
		zap.String("id", q.ID),
		zap.String("template", q.Template.ID),
		zap.String("context", q.Context.ID),
	)
	return q, nil
}

func (s *Service) match(ctx context.Context, req Request) (*Match, error) {
	_, span := s.tracer.Start(ctx, "qgen.Match")
	defer span.End()

	m, err := s.matcher.Match(req.Skills())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("qgen.template", m.Template.ID),
		attribute.String("qgen.context", m.Context.ID),
		attribute.String("qgen.goal", m.Goal.ID),
		attribute.Int("qgen.candidates.templates", len(m.Templates)),
	)
	return m, nil
}

// synthesize calls the synthesizer under its own timeout so a slow model
// cannot hold the request beyond it. Cancelling ctx aborts only this call.
func (s *Service) synthesize(ctx context.Context, m *Match, q *GeneratedQuestion) (*AnswerBundle, error) {
	if s.synth == nil {
		return nil, &ExternalServiceError{Err: errors.New("no answer synthesizer configured")}
	}

	ctx, span := s.tracer.Start(ctx, "qgen.Synthesize")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	bundle, err := s.synth.Synthesize(ctx, SynthesisRequest{
		Question:      q.Question,
		QuestionLaTeX: q.QuestionLaTeX,
		Context:       m.Context.Description,
		Variables:     q.Variables,
		Skills:        q.Skills.Strings(),
		Difficulty:    q.Difficulty,
		Level:         q.Level,
		Subject:       q.Subject,
	})
	if err == nil {
		err = checkBundle(bundle)
	}
	s.rec.SynthesisObserved(time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		return nil, &ExternalServiceError{Err: err}
	}
	return bundle, nil
}

func checkBundle(b *AnswerBundle) error {
	if b == nil {
		return errors.New("synthesizer returned no answer")
	}
	if len(b.Options) == 0 {
		return errors.New("synthesizer returned no options")
	}
	if b.CorrectAnswer < 0 || b.CorrectAnswer >= len(b.Options) {
		return fmt.Errorf("correct answer index %d out of range [0, %d)", b.CorrectAnswer, len(b.Options))
	}
	if len(b.OptionsLaTeX) > 0 && len(b.OptionsLaTeX) != len(b.Options) {
		return fmt.Errorf("got %d LaTeX options for %d options", len(b.OptionsLaTeX), len(b.Options))
	}
	return nil
}

// build generates question index of a request from the matched triple.
func (s *Service) build(m *Match, req Request, seed uint64, index int) (*GeneratedQuestion, error) {
	src := itemSource(seed, index)
	rng := rand.New(src)

	id, err := uuid.NewRandomFromReader(src)
	if err != nil {
		return nil, fmt.Errorf("question id: %w", err)
	}

	tpl := m.Template
	values, err := GenerateValues(rng, tpl.Variables, tpl.Constraints, s.maxAttempts)
	if err != nil {
		var unsat *ConstraintUnsatisfiableError
		if errors.As(err, &unsat) {
			unsat.TemplateID = tpl.ID
		}
		return nil, err
	}
	text, latex, err := FillTemplate(tpl, values)
	if err != nil {
		return nil, err
	}

	return &GeneratedQuestion{
		ID:            id.String(),
		Level:         req.Level,
		Subject:       req.Subject,
		Topic:         m.Goal.Name,
		Question:      text,
		QuestionLaTeX: latex,
		Skills:        m.Skills.Union(tpl.RequiredSkills),
		Difficulty:    ClassifyDifficulty(m.Skills.Len()),
		Context:       ContextRef{ID: m.Context.ID, Name: m.Context.Name, Description: m.Context.Description},
		Template:      TemplateRef{ID: tpl.ID, Name: tpl.Name},
		Variables:     values,
		CreatedAt:     s.clock().UTC(),
	}, nil
}

func (s *Service) seed(req Request) uint64 {
	if req.Seed != nil {
		return *req.Seed
	}
	return rand.Uint64()
}

// itemSource derives the random stream of one question from the request
// seed and the question's index.
func itemSource(seed uint64, index int) *rand.ChaCha8 {
	var key [32]byte
	copy(key[:], "qgen/item")
	binary.LittleEndian.PutUint64(key[16:], seed)
	binary.LittleEndian.PutUint64(key[24:], uint64(index))
	return rand.NewChaCha8(key)
}

func (s *Service) fail(span trace.Span, path string, err error) {
	code := ErrorCode(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, code)
	s.rec.GenerationFailed(path, code)

	switch code {
	case CodeValidation, CodeNoCompatibleContext, CodeNoCompatibleGoal, CodeNoCompatibleTemplate:
		s.log.Info("generation rejected", zap.String("path", path), zap.String("code", code), zap.Error(err))
	default:
		s.log.Error("generation failed", zap.String("path", path), zap.String("code", code), zap.Error(err))
	}
}
