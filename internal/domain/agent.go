package domain

import (
	"context"
	"time"
)

// ComplexityTier sizes the execution budget for a structured-data query.
type ComplexityTier string

const (
	// TierSimple covers single-table lookups and plain aggregates.
	TierSimple ComplexityTier = "simple"
	// TierModerate covers grouped or filtered queries.
	TierModerate ComplexityTier = "moderate"
	// TierComplex covers joins, nesting, and heavy temporal reasoning.
	TierComplex ComplexityTier = "complex"
)

// TierBudget is the iteration and wall-clock budget for one agent attempt.
type TierBudget struct {
	MaxIterations    int
	MaxExecutionTime time.Duration
}

// Budget returns the execution budget for the tier.
// Retries always escalate to TierComplex, so later attempts are never more
// constrained than earlier ones.
func (t ComplexityTier) Budget() TierBudget {
	switch t {
	case TierSimple:
		return TierBudget{MaxIterations: 15, MaxExecutionTime: 90 * time.Second}
	case TierModerate:
		return TierBudget{MaxIterations: 25, MaxExecutionTime: 150 * time.Second}
	default:
		return TierBudget{MaxIterations: 35, MaxExecutionTime: 240 * time.Second}
	}
}

// ErrorKind is the failure taxonomy for agent execution.
type ErrorKind string

const (
	// ErrorKindTimeout covers iteration and wall-clock budget exhaustion.
	ErrorKindTimeout ErrorKind = "timeout"
	// ErrorKindParsing covers malformed agent output.
	ErrorKindParsing ErrorKind = "parsing"
	// ErrorKindRateLimit covers provider throttling.
	ErrorKindRateLimit ErrorKind = "rate_limit"
	// ErrorKindDatabase covers structural SQL failures; never retried.
	ErrorKindDatabase ErrorKind = "database"
	// ErrorKindOther covers everything else.
	ErrorKindOther ErrorKind = "other"
)

// ErrorClass maps a raised agent failure to a retry policy.
type ErrorClass struct {
	Kind        ErrorKind
	Retryable   bool
	Wait        time.Duration
	UserMessage string
}

// AttemptRecord is one entry in a session's append-only attempt history.
type AttemptRecord struct {
	Attempt int
	Tier    ComplexityTier
	Err     error
	Class   *ErrorClass
}

// AgentRunResult is the raw output of one tool-using agent invocation.
type AgentRunResult struct {
	Answer string
	// ToolInvocations are the opaque inputs the agent issued to its tools,
	// in order (typically SQL statements).
	ToolInvocations []string
}

// AgentRunner drives one attempt of an external tool-using agent
// within the given iteration and wall-clock budget.
type AgentRunner interface {
	RunAgent(
		ctx context.Context, systemPrompt, query string, budget TierBudget,
	) (AgentRunResult, error)
}

// AgentAnswer is the terminal success result of an agent session.
type AgentAnswer struct {
	Answer          string
	TablesUsed      []string
	ToolInvocations []string
	Attempts        int
}

// TableInfo describes a structured table in scope for the agent.
type TableInfo struct {
	Name     string
	Filename string
	Columns  []string
	RowCount int
}
