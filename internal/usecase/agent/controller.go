// Package agent drives a tool-using SQL agent through bounded attempts:
// complexity-based budget tiers, error classification, and exponential
// backoff between retries.
package agent

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/metrics"
)

const (
	defaultMaxRetries = 3
	backoffMultiplier = 2
)

type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeRetry
	outcomeFailed
)

// transition is the decision for one finished attempt.
type transition struct {
	outcome outcomeKind
	wait    time.Duration
	class   *domain.ErrorClass
}

// decide is the pure attempt-transition function. The outer Run loop owns
// the sleep side effect; decide only computes what should happen next.
func decide(err error, attempt, maxRetries int) transition {
	if err == nil {
		return transition{outcome: outcomeSuccess}
	}
	class := ClassifyError(err)
	if !class.Retryable || attempt >= maxRetries-1 {
		return transition{outcome: outcomeFailed, class: &class}
	}
	backoff := time.Duration(1) * time.Second
	for i := 0; i < attempt; i++ {
		backoff *= backoffMultiplier
	}
	return transition{outcome: outcomeRetry, wait: class.Wait + backoff, class: &class}
}

// Controller runs agent sessions with retry.
type Controller struct {
	runner     domain.AgentRunner
	maxRetries int
	logger     *zap.Logger
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

// New builds a controller around an external agent runner.
func New(runner domain.AgentRunner, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		runner:     runner,
		maxRetries: defaultMaxRetries,
		logger:     logger,
		now:        time.Now,
		sleep:      sleepCtx,
	}
}

// WithMaxRetries overrides the attempt budget.
func (c *Controller) WithMaxRetries(n int) *Controller {
	if n > 0 {
		c.maxRetries = n
	}
	return c
}

// Run executes one agent session for the query over the given tables.
// Attempts are strictly sequential. The first attempt uses the budget of
// the classified complexity tier; every retry escalates to the complex
// tier. On exhaustion the caller gets a structured failure, never a raw
// provider error.
func (c *Controller) Run(ctx context.Context, query string, tables []domain.TableInfo) (domain.AgentAnswer, error) {
	sessionID := uuid.NewString()
	started := c.now()
	tier := ClassifyComplexity(query)
	enhanced := EnhanceTemporal(query, started)
	systemPrompt := BuildSystemPrompt(tables, started)

	log := c.logger.With(
		zap.String("session_id", sessionID),
		zap.String("tier", string(tier)))
	log.Info("agent session started", zap.Int("tables", len(tables)))

	var history []domain.AttemptRecord
	for attempt := 0; ; attempt++ {
		attemptTier := tier
		if attempt > 0 {
			attemptTier = domain.TierComplex
		}
		budget := attemptTier.Budget()

		attemptCtx, cancel := context.WithTimeout(ctx, budget.MaxExecutionTime)
		result, err := c.runner.RunAgent(attemptCtx, systemPrompt, enhanced, budget)
		cancel()

		tr := decide(err, attempt, c.maxRetries)
		history = append(history, domain.AttemptRecord{
			Attempt: attempt,
			Tier:    attemptTier,
			Err:     err,
			Class:   tr.class,
		})

		switch tr.outcome {
		case outcomeSuccess:
			metrics.AgentAttemptsTotal.WithLabelValues("success").Inc()
			metrics.AgentSessionDuration.Observe(c.now().Sub(started).Seconds())
			log.Info("agent session succeeded",
				zap.Int("attempts", attempt+1),
				zap.Int("tool_invocations", len(result.ToolInvocations)))
			return domain.AgentAnswer{
				Answer:          StripDecimals(result.Answer),
				TablesUsed:      TablesUsed(result.ToolInvocations, tables),
				ToolInvocations: result.ToolInvocations,
				Attempts:        attempt + 1,
			}, nil

		case outcomeFailed:
			metrics.AgentAttemptsTotal.WithLabelValues("error").Inc()
			log.Error("agent session failed",
				zap.Int("attempts", attempt+1),
				zap.String("kind", string(tr.class.Kind)),
				zap.Error(err))
			return domain.AgentAnswer{}, domain.NewAgentFailure(err, tr.class.UserMessage, history)

		case outcomeRetry:
			metrics.AgentAttemptsTotal.WithLabelValues("error").Inc()
			metrics.AgentRetriesTotal.WithLabelValues(string(tr.class.Kind)).Inc()
			log.Warn("agent attempt failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.String("kind", string(tr.class.Kind)),
				zap.Duration("wait", tr.wait),
				zap.Error(err))
			if sleepErr := c.sleep(ctx, tr.wait); sleepErr != nil {
				return domain.AgentAnswer{}, sleepErr
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
