package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"

	"quickinvoice/internal/core/apperror"
)

// TransitionPolicy decides which status changes are allowed.
// Which transitions are representable is fixed by Status; which are allowed is policy.
type TransitionPolicy interface {
	Allow(from, to Status) bool
	Name() string
}

// PermissivePolicy allows any status to move to any other status.
type PermissivePolicy struct{}

func (PermissivePolicy) Allow(from, to Status) bool { return from.Valid() && to.Valid() }
func (PermissivePolicy) Name() string               { return "permissive" }

// ForwardOnlyPolicy allows unpaid -> paid -> delivered (skipping allowed)
// and same-state updates, but never a backward move.
type ForwardOnlyPolicy struct{}

func (ForwardOnlyPolicy) Allow(from, to Status) bool {
	return from.Valid() && to.Valid() && to.rank() >= from.rank()
}
func (ForwardOnlyPolicy) Name() string { return "forward_only" }

// ExpressionPolicy evaluates a CEL boolean expression over the string
// variables `from` and `to`, e.g.:
//
//	from == to || (from == "unpaid" && to in ["paid", "delivered"])
type ExpressionPolicy struct {
	expr    string
	program cel.Program
}

// NewExpressionPolicy compiles expr. The expression must evaluate to bool.
func NewExpressionPolicy(expr string) (*ExpressionPolicy, error) {
	env, err := cel.NewEnv(
		cel.Variable("from", cel.StringType),
		cel.Variable("to", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile status policy: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("status policy must return bool, got %s", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build status policy: %w", err)
	}

	return &ExpressionPolicy{expr: expr, program: prg}, nil
}

// Allow implements TransitionPolicy. Evaluation errors deny the transition.
func (p *ExpressionPolicy) Allow(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	out, _, err := p.program.Eval(map[string]any{
		"from": string(from),
		"to":   string(to),
	})
	if err != nil {
		return false
	}
	allowed, ok := out.Value().(bool)
	return ok && allowed
}

func (p *ExpressionPolicy) Name() string { return "expression" }

// PolicyFromConfig maps a configuration value to a policy:
// "permissive", "forward_only", or "cel:<expression>".
func PolicyFromConfig(value string) (TransitionPolicy, error) {
	value = strings.TrimSpace(value)
	switch {
	case value == "" || value == "permissive":
		return PermissivePolicy{}, nil
	case value == "forward_only":
		return ForwardOnlyPolicy{}, nil
	case strings.HasPrefix(value, "cel:"):
		return NewExpressionPolicy(strings.TrimPrefix(value, "cel:"))
	default:
		return nil, fmt.Errorf("unknown status policy %q", value)
	}
}

// ApplyStatus moves o to next under policy and stamps the change with now.
// This is the only place a status is changed.
func ApplyStatus(o *Order, next Status, policy TransitionPolicy, now time.Time) error {
	if !next.Valid() {
		return apperror.NewValidation("unknown order status").
			WithDetail("field", "status").
			WithDetail("value", string(next))
	}
	if policy == nil {
		policy = PermissivePolicy{}
	}
	if !policy.Allow(o.Status, next) {
		return apperror.NewBusinessRule(apperror.CodeStatusTransition,
			fmt.Sprintf("cannot change status from %s to %s", o.Status, next)).
			WithDetail("from", string(o.Status)).
			WithDetail("to", string(next)).
			WithDetail("policy", policy.Name())
	}

	o.Status = next
	o.Touch(now)
	return nil
}
