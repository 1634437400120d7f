package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrInvalidValue is returned when an expression evaluates to NaN.
var ErrInvalidValue = errors.New("missing value (NA or NaN returned)")

// Expr computes a value from the state of the entity evaluating it.
type Expr interface {
	Eval(e Entity) float64
}

// CloneableExpr is implemented by expressions carrying internal state that must not be
// shared between clones of the activity holding them.
type CloneableExpr interface {
	Expr
	CloneExpr() Expr
}

// ExprFunc adapts a plain function to Expr.
// Clones share whatever the closure captures.
type ExprFunc func(e Entity) float64

func (f ExprFunc) Eval(e Entity) float64 { return f(e) }

// Value is either a constant or an entity-dependent expression.
type Value struct {
	constant float64
	expr     Expr
}

// Constant returns a Value that always evaluates to v.
func Constant(v float64) Value {
	return Value{constant: v}
}

// Dynamic returns a Value backed by expr.
func Dynamic(expr Expr) Value {
	return Value{expr: expr}
}

// IsConstant reports whether v has no expression.
func (v Value) IsConstant() bool { return v.expr == nil }

// Eval evaluates v against e. Constants never touch e, so e may be nil for them.
func (v Value) Eval(e Entity) float64 {
	if v.expr == nil {
		return v.constant
	}
	return v.expr.Eval(e)
}

// Clone returns a copy of v whose expression state is independent of v's.
func (v Value) Clone() Value {
	if c, ok := v.expr.(CloneableExpr); ok {
		return Value{expr: c.CloneExpr()}
	}
	return v
}

func (v Value) String() string {
	if v.expr == nil {
		return fmt.Sprintf("%g", v.constant)
	}
	return fmt.Sprintf("%T", v.expr)
}

// AttributeExpr reads an attribute of the evaluating entity, or Default if it is unset.
type AttributeExpr struct {
	Key     string
	Default float64
	Global  bool
}

func (x AttributeExpr) Eval(e Entity) float64 {
	v := e.Attribute(x.Key, x.Global)
	if math.IsNaN(v) {
		return x.Default
	}
	return v
}

// sampler is the random stream behind a distribution expression. Clones get a stream
// of their own, derived by name, so cloning never draws from the original.
type sampler struct {
	parts  *PartitionedRNG
	stream string
	rng    *rand.Rand
	clones int
}

func newSampler(parts *PartitionedRNG, stream string) sampler {
	return sampler{parts: parts, stream: stream, rng: parts.ForSubsystem(stream)}
}

func (s *sampler) fork() sampler {
	s.clones++
	return newSampler(s.parts, fmt.Sprintf("%s_clone%d", s.stream, s.clones))
}

// Stream returns the name of the RNG stream the expression draws from.
func (s *sampler) Stream() string { return s.stream }

// ExponentialExpr draws exponentially distributed values with the given mean.
type ExponentialExpr struct {
	Mean float64
	sampler
}

// NewExponentialExpr creates an exponential sampler drawing from the named stream.
func NewExponentialExpr(mean float64, parts *PartitionedRNG, stream string) *ExponentialExpr {
	return &ExponentialExpr{Mean: mean, sampler: newSampler(parts, stream)}
}

func (x *ExponentialExpr) Eval(Entity) float64 {
	return x.rng.ExpFloat64() * x.Mean
}

func (x *ExponentialExpr) CloneExpr() Expr {
	return &ExponentialExpr{Mean: x.Mean, sampler: x.fork()}
}

// UniformExpr draws uniformly distributed values in [Min, Max).
type UniformExpr struct {
	Min, Max float64
	sampler
}

// NewUniformExpr creates a uniform sampler drawing from the named stream.
func NewUniformExpr(min, max float64, parts *PartitionedRNG, stream string) *UniformExpr {
	return &UniformExpr{Min: min, Max: max, sampler: newSampler(parts, stream)}
}

func (x *UniformExpr) Eval(Entity) float64 {
	return x.Min + x.rng.Float64()*(x.Max-x.Min)
}

func (x *UniformExpr) CloneExpr() Expr {
	return &UniformExpr{Min: x.Min, Max: x.Max, sampler: x.fork()}
}

// evalValue evaluates v against e and rejects NaN.
func evalValue(v Value, e Entity) (float64, error) {
	value := v.Eval(e)
	if math.IsNaN(value) {
		return 0, ErrInvalidValue
	}
	return value, nil
}

// Timeout delays the entity for the evaluated amount of time.
type Timeout struct {
	node
	delay Value
}

// NewTimeout creates a Timeout activity.
func NewTimeout(delay Value) *Timeout {
	return &Timeout{node: node{name: "Timeout"}, delay: delay}
}

func (t *Timeout) Clone() Activity {
	return &Timeout{node: t.unlinked(), delay: t.delay.Clone()}
}

// Run returns the absolute value of the evaluated delay; the sign of the configured
// delay is not preserved.
func (t *Timeout) Run(e Entity) (float64, error) {
	value, err := evalValue(t.delay, e)
	if err != nil {
		return 0, err
	}
	return math.Abs(value), nil
}
