package openai

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
)

const executeSQLTool = "execute_sql"

// SQLExecutor runs a read-only SQL query against the analytical store and
// returns a textual result the model can reason over.
type SQLExecutor interface {
	ExecuteSQL(ctx context.Context, query string) (string, error)
}

// AgentRunner implements domain.AgentRunner with an OpenAI tool-calling
// loop. The model is given a single execute_sql tool; each round-trip
// feeds tool output back until the model answers in plain text or the
// iteration budget runs out.
type AgentRunner struct {
	gen    *Generator
	sql    SQLExecutor
	logger *zap.Logger
}

// NewAgentRunner builds a tool-calling runner on top of a Generator.
func NewAgentRunner(gen *Generator, sql SQLExecutor, logger *zap.Logger) *AgentRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgentRunner{gen: gen, sql: sql, logger: logger}
}

var sqlToolDef = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        executeSQLTool,
		Description: "Execute a read-only SQL query against the available tables and return the result rows as text.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "The SQL query to execute."}
			},
			"required": ["query"]
		}`),
	},
}

type sqlToolArgs struct {
	Query string `json:"query"`
}

// RunAgent performs one agent attempt within budget.MaxIterations model
// round-trips. Invoked SQL statements are recorded in order.
func (r *AgentRunner) RunAgent(
	ctx context.Context, systemPrompt, query string, budget domain.TierBudget,
) (domain.AgentRunResult, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: query},
	}

	var invocations []string

	for iter := 0; iter < budget.MaxIterations; iter++ {
		resp, err := r.gen.chat(ctx, messages, []openai.Tool{sqlToolDef})
		if err != nil {
			// A wall-clock budget expiry must surface as a timeout, not
			// as the provider error the expired context produced.
			if ctx.Err() == context.DeadlineExceeded {
				err = fmt.Errorf("agent timed out after %s execution budget: %w", budget.MaxExecutionTime, err)
			}
			return domain.AgentRunResult{ToolInvocations: invocations}, err
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return domain.AgentRunResult{
				Answer:          msg.Content,
				ToolInvocations: invocations,
			}, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			result := r.runTool(ctx, call, &invocations)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}

	return domain.AgentRunResult{ToolInvocations: invocations},
		fmt.Errorf("agent iteration limit reached after %d rounds", budget.MaxIterations)
}

// runTool executes one tool call and returns the content to feed back to
// the model. Tool failures are reported to the model rather than aborting
// the run, so it can correct its own query.
func (r *AgentRunner) runTool(ctx context.Context, call openai.ToolCall, invocations *[]string) string {
	if call.Function.Name != executeSQLTool {
		return fmt.Sprintf("Error: unknown tool %q", call.Function.Name)
	}

	var args sqlToolArgs
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		return fmt.Sprintf("Error: invalid tool arguments: %v", err)
	}

	*invocations = append(*invocations, args.Query)
	r.logger.Debug("agent executing sql", zap.String("query", args.Query))

	result, err := r.sql.ExecuteSQL(ctx, args.Query)
	if err != nil {
		return fmt.Sprintf("Error executing query: %v", err)
	}
	return result
}
