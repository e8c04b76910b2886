package services

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
)

// CompositionEnv defines the variables available during filter expression evaluation.
type CompositionEnv struct {
	Index     int       `expr:"index"`
	Phases    int       `expr:"phases"`
	Fractions []float64 `expr:"fractions"`
	Labels    []string  `expr:"labels"`
}

// CompositionSpecification defines a condition that a swept composition must meet.
type CompositionSpecification interface {
	// IsSatisfiedBy checks if the composition meets the specification.
	// Returns true if satisfied, along with a reason if not (or empty if satisfied).
	IsSatisfiedBy(index int, c values.Composition) (bool, string)
}

// AndSpecification combines multiple specifications with logical AND.
type AndSpecification struct {
	specs []CompositionSpecification
}

// NewAndSpecification creates a new AndSpecification.
func NewAndSpecification(specs ...CompositionSpecification) *AndSpecification {
	return &AndSpecification{specs: specs}
}

// IsSatisfiedBy checks if all specifications are satisfied.
func (s *AndSpecification) IsSatisfiedBy(index int, c values.Composition) (bool, string) {
	for _, spec := range s.specs {
		if spec == nil {
			continue
		}
		if satisfied, reason := spec.IsSatisfiedBy(index, c); !satisfied {
			return false, reason
		}
	}
	return true, ""
}

// NonDegenerateSpecification rejects compositions with a zero fraction.
type NonDegenerateSpecification struct{}

// NewNonDegenerateSpecification creates a new NonDegenerateSpecification.
func NewNonDegenerateSpecification() *NonDegenerateSpecification {
	return &NonDegenerateSpecification{}
}

// IsSatisfiedBy checks that every phase has a positive fraction.
func (s *NonDegenerateSpecification) IsSatisfiedBy(_ int, c values.Composition) (bool, string) {
	if c.IsDegenerate() {
		return false, "excluded by --exclude-degenerate"
	}
	return true, ""
}

// CompileCompositionFilter compiles a boolean expression over CompositionEnv.
func CompileCompositionFilter(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression, expr.Env(CompositionEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression %q: %w", expression, err)
	}
	return program, nil
}

// ExpressionSpecification filters compositions using an expr program.
type ExpressionSpecification struct {
	program *vm.Program
}

// NewExpressionSpecification creates a new ExpressionSpecification.
func NewExpressionSpecification(program *vm.Program) *ExpressionSpecification {
	return &ExpressionSpecification{program: program}
}

// IsSatisfiedBy evaluates the expr program against the composition. An
// evaluation error counts as not satisfied; callers that must surface it use
// Evaluate.
func (s *ExpressionSpecification) IsSatisfiedBy(index int, c values.Composition) (bool, string) {
	ok, err := s.Evaluate(index, c)
	if err != nil {
		return false, err.Error()
	}
	if !ok {
		return false, "excluded by --where expression"
	}
	return true, ""
}

// Evaluate runs the expr program against the composition.
func (s *ExpressionSpecification) Evaluate(index int, c values.Composition) (bool, error) {
	if s.program == nil {
		return true, nil
	}

	env := CompositionEnv{
		Index:     index,
		Phases:    c.Len(),
		Fractions: c.Fractions(),
		Labels:    c.Labels(),
	}

	output, err := expr.Run(s.program, env)
	if err != nil {
		return false, fmt.Errorf("filter expression error: %w", err)
	}

	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("filter expression did not return boolean: %v", output)
	}
	return result, nil
}
