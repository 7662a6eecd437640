// Package policy evaluates an optional Rego admission policy before a
// certification pipeline starts. Deployments without a policy file admit
// everything.
package policy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/open-policy-agent/opa/rego"

	"github.com/csera5/BlockchainTech/internal/domain"
)

const defaultQuery = "data.certify.policy.result"

type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngineFromPath compiles the Rego module at path and prepares the
// admission query.
func NewEngineFromPath(ctx context.Context, path string) (*Engine, error) {
	r := rego.New(
		rego.Query(defaultQuery),
		rego.StrictBuiltinErrors(true),
		rego.Load([]string{path}, nil),
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare admission policy: %w", err)
	}
	return &Engine{query: prepared}, nil
}

func (e *Engine) Evaluate(ctx context.Context, input domain.AdmissionInput) (domain.AdmissionDecision, error) {
	if e == nil {
		return domain.AdmissionDecision{Allow: true}, nil
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return domain.AdmissionDecision{}, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return domain.AdmissionDecision{}, errors.New("empty policy result")
	}

	// Round-trip through JSON to map the untyped rego value onto the
	// decision struct.
	encoded, err := json.Marshal(results[0].Expressions[0].Value)
	if err != nil {
		return domain.AdmissionDecision{}, err
	}
	var decision domain.AdmissionDecision
	if err := json.Unmarshal(encoded, &decision); err != nil {
		return domain.AdmissionDecision{}, fmt.Errorf("malformed policy result: %w", err)
	}
	return decision, nil
}

var _ domain.PolicyEngine = (*Engine)(nil)
