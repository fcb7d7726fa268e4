package tools

import "context"

// Tool is one capability the model can invoke during an agent turn.
// ParameterSchema returns the JSON schema string that is embedded in
// the planning prompt; Execute receives the decoded params and returns
// plain text for the follow-up prompt.
type Tool interface {
	Name() string
	Description() string
	ParameterSchema() string
	Execute(ctx context.Context, params map[string]any) (string, error)
}
