// Package policy decides when an encounter has reached its documentation
// point. The rule lives in rego so operators can replace it without a
// rebuild.
package policy

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/rego"
)

// Decisions returned by the encounter policy.
const (
	DecisionPass     = "pass"
	DecisionDocument = "document"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.encounter_policy.decision"),
		rego.Module("encounter_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// LoadEngine builds an engine from a policy file, falling back to the
// built-in default when path is empty.
func LoadEngine(ctx context.Context, path string) (*Engine, error) {
	content := DefaultPolicy
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read policy file: %w", err)
		}
		content = string(data)
	}
	return NewEngine(ctx, content)
}

// Input is the policy evaluation input for one turn.
type Input struct {
	Message   string   `json:"message"`
	Delegates []string `json:"delegates"`
	TurnCount int      `json:"turn_count"`
}

// Evaluate returns the encounter decision for a turn. An absent or
// malformed result defaults to pass.
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionPass, nil
	}
	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return DecisionPass, nil
}

// DefaultPolicy is the default encounter policy: document when the user
// closes the encounter with DONE, or when any handler hinted at the
// documentation stage.
const DefaultPolicy = `
package encounter_policy

default decision = "pass"

decision = "document" {
	upper(trim_space(input.message)) == "DONE"
}

decision = "document" {
	some i
	input.delegates[i] == "clinical_documentation"
}
`
