package dmn

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Evaluator evaluates decisions. It holds the expression evaluators and
// evaluation modes registered by expression type, and is safe for concurrent use.
//
// An Evaluator created without options can evaluate literal expressions only;
// register CEL, Expr or other languages with WithExpressionEvaluator.
type Evaluator struct {
	expressions map[ExpressionType]ExpressionEvaluator
	rules       ruleEvaluator
	log         zerolog.Logger
	tracer      trace.Tracer
	observer    Observer
}

// Observer is notified after every evaluation. Implementations must be safe for
// concurrent use. See package metrics for a Prometheus implementation.
type Observer interface {
	DecisionEvaluated(d *Decision, res *DecisionResult, err error, elapsed time.Duration)
}

// Option configures an Evaluator.
type Option func(e *Evaluator)

// NewEvaluator returns an Evaluator with the options applied.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		expressions: map[ExpressionType]ExpressionEvaluator{
			Literal: LiteralEvaluator{},
		},
		rules:  ruleEvaluator{modes: defaultModes()},
		log:    zerolog.Nop(),
		tracer: noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithExpressionEvaluator registers the evaluator for expressions of type t,
// replacing any previous registration.
func WithExpressionEvaluator(t ExpressionType, ev ExpressionEvaluator) Option {
	return func(e *Evaluator) {
		e.expressions[t] = ev
	}
}

// WithEvaluationMode sets the mode used for input entries whose expression is of type t.
// Defaults: InputComparison for Literal and FEEL, BooleanResult for CEL and Expr.
func WithEvaluationMode(t ExpressionType, m EvaluationMode) Option {
	return func(e *Evaluator) {
		e.rules.modes[t] = m
	}
}

// WithLogger sets the logger for evaluation events. Default: no logging.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Evaluator) {
		e.log = l
	}
}

// WithTracer creates a span for every evaluation. Default: no tracing.
func WithTracer(t trace.Tracer) Option {
	return func(e *Evaluator) {
		e.tracer = t
	}
}

// WithObserver notifies o after every evaluation.
func WithObserver(o Observer) Option {
	return func(e *Evaluator) {
		e.observer = o
	}
}

func (e *Evaluator) expressionEvaluator(t ExpressionType) (ExpressionEvaluator, error) {
	ev, ok := e.expressions[t]
	if !ok {
		return nil, fmt.Errorf("%w for expression type %q", ErrNoExpressionEvaluator, t)
	}
	return ev, nil
}

// Evaluate evaluates the decision against the variables.
//
// Rules are evaluated in declaration order. With the First and Any hit policies,
// evaluation stops at the first matching rule. With Unique, more than one match
// returns ErrNotUnique. Collect and Rule Order return all matches.
// A result without rule results means that no rule matched.
//
// Evaluate returns ErrInvalidArgument for a nil decision or variables,
// ErrUnsupportedHitPolicy for Priority and Output Order, ErrInvalidVariables if a
// variable replaces an input computed by a scripted expression, and an error
// matching ErrEvaluation if an expression fails.
func (e *Evaluator) Evaluate(ctx context.Context, d *Decision, vars *Variables) (*DecisionResult, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: decision can not be nil", ErrInvalidArgument)
	}
	if vars == nil {
		return nil, fmt.Errorf("%w: decision variables can not be nil", ErrInvalidArgument)
	}

	ctx, span := e.tracer.Start(ctx, "dmn.Evaluate", trace.WithAttributes(
		attribute.String("dmn.decision.id", d.id),
		attribute.String("dmn.decision.hit_policy", d.hitPolicy.String()),
	))
	defer span.End()

	start := time.Now()
	e.log.Debug().
		Str("decision", d.id).
		Stringer("hit_policy", d.hitPolicy).
		Strs("variables", vars.Names()).
		Msg("evaluating decision")

	res, err := e.evaluate(ctx, d, vars)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.log.Warn().Err(err).Str("decision", d.id).Dur("elapsed", elapsed).Msg("decision evaluation failed")
	} else {
		span.SetAttributes(attribute.Int("dmn.rule_results", len(res.RuleResults)))
		e.log.Info().Str("decision", d.id).Int("matched", len(res.RuleResults)).Dur("elapsed", elapsed).Msg("decision evaluated")
	}

	if e.observer != nil {
		e.observer.DecisionEvaluated(d, res, err, elapsed)
	}
	return res, err
}

func (e *Evaluator) evaluate(ctx context.Context, d *Decision, vars *Variables) (*DecisionResult, error) {
	if !d.hitPolicy.supported() {
		return nil, fmt.Errorf("%w: hit policy %s is not supported", ErrUnsupportedHitPolicy, d.hitPolicy)
	}

	if err := validateVariables(d.inputs, vars); err != nil {
		return nil, err
	}

	c := newEvalContext(ctx, vars, e.expressionEvaluator)
	results := []RuleResult{}

	for _, rule := range d.rules {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("evaluating decision %s: %w", d.id, err)
		}

		res, err := e.rules.evaluate(rule, d.inputs, d.outputs, c)
		if err != nil {
			return nil, err
		}
		if res == nil {
			continue
		}

		e.log.Debug().Str("decision", d.id).Str("rule", rule.ID).Msg("rule matched")
		results = append(results, *res)
		if d.hitPolicy.singleResult() {
			break
		}
	}

	if d.hitPolicy == Unique && len(results) > 1 {
		ids := make([]string, len(results))
		for i, r := range results {
			ids[i] = r.RuleID
		}
		return nil, fmt.Errorf("%w: decision %s matched rules %s", ErrNotUnique, d.id, strings.Join(ids, ","))
	}

	return &DecisionResult{RuleResults: results}, nil
}

// validateVariables fails if a variable names an input whose expression can not be overridden.
func validateVariables(inputs []Input, vars *Variables) error {
	invalid := []string{}
	for _, in := range inputs {
		if !in.Expression.Type.IsOverridable() && vars.IsPresent(in.Name) {
			invalid = append(invalid, in.Name)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("%w: can not apply decision variables to inputs '%s', only inputs with literal or FEEL expressions can be overridden",
			ErrInvalidVariables, strings.Join(invalid, ","))
	}
	return nil
}
