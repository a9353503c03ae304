// Package ask is the query facade: it classifies an incoming question,
// routes it to document retrieval, the SQL agent, or both, and
// synthesizes the final answer.
package ask

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
)

const defaultTopK = 5

const (
	methodRAG    = "rag"
	methodSQL    = "sql_agent"
	methodHybrid = "hybrid"
)

// Service orchestrates one query end to end.
type Service struct {
	classifier Classifier
	retriever  Retriever
	generator  domain.Generator
	agent      AgentController
	logger     *zap.Logger
}

// New builds the query facade.
func New(classifier Classifier, retriever Retriever, generator domain.Generator, agent AgentController, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		classifier: classifier,
		retriever:  retriever,
		generator:  generator,
		agent:      agent,
		logger:     logger,
	}
}

// Classify exposes the routing decision without executing the query.
func (s *Service) Classify(ctx context.Context, query string) domain.Classification {
	return s.classifier.Classify(ctx, query)
}

// RetrieveOnly returns ranked evidence for a query without synthesis.
func (s *Service) RetrieveOnly(ctx context.Context, scope, query string, topK int) ([]domain.Candidate, error) {
	if topK <= 0 {
		topK = defaultTopK
	}
	return s.retriever.Retrieve(ctx, scope, query, topK)
}

// Ask answers the request. Classification picks the path: document
// retrieval with answer synthesis, an agent session over the in-scope
// tables, or both for hybrid queries. Prediction-classified queries run
// the agent path since they reason over structured data.
func (s *Service) Ask(ctx context.Context, req Request) (Answer, error) {
	if strings.TrimSpace(req.Query) == "" {
		return Answer{}, fmt.Errorf("empty query: %w", domain.ErrNotFound)
	}
	topK := req.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	classification := s.classifier.Classify(ctx, req.Query)
	useSQL := (classification.UsesSQL() || classification.UsesPrediction()) &&
		len(req.Tables) > 0 && s.agent != nil
	useRAG := classification.UsesRAG() || !useSQL

	s.logger.Info("query routed",
		zap.String("scope", req.Scope),
		zap.String("type", string(classification.Type)),
		zap.Float64("confidence", classification.Confidence),
		zap.Bool("rag", useRAG),
		zap.Bool("sql", useSQL))

	answer := Answer{Classification: classification}

	var agentAnswer *domain.AgentAnswer
	if useSQL {
		result, err := s.agent.Run(ctx, req.Query, req.Tables)
		if err != nil {
			if !useRAG {
				return Answer{}, fmt.Errorf("agent session: %w", err)
			}
			// Hybrid queries degrade to the document path alone.
			s.logger.Warn("agent path failed, answering from documents only", zap.Error(err))
			useSQL = false
		} else {
			agentAnswer = &result
		}
	}

	var ragAnswer string
	if useRAG {
		candidates, err := s.retriever.Retrieve(ctx, req.Scope, req.Query, topK)
		if err != nil {
			if agentAnswer == nil {
				return Answer{}, fmt.Errorf("retrieve: %w", err)
			}
			s.logger.Warn("document path failed, answering from agent only", zap.Error(err))
			useRAG = false
		} else {
			answer.Sources = candidates
			ragAnswer, err = s.synthesize(ctx, req.Query, candidates)
			if err != nil {
				if agentAnswer == nil {
					return Answer{}, err
				}
				s.logger.Warn("answer synthesis failed, answering from agent only", zap.Error(err))
				useRAG = false
			}
		}
	}

	switch {
	case useRAG && agentAnswer != nil:
		answer.Method = methodHybrid
		answer.Answer = combineAnswers(agentAnswer.Answer, ragAnswer)
	case agentAnswer != nil:
		answer.Method = methodSQL
		answer.Answer = agentAnswer.Answer
	default:
		answer.Method = methodRAG
		answer.Answer = ragAnswer
	}
	if agentAnswer != nil {
		answer.TablesUsed = agentAnswer.TablesUsed
		answer.ToolInvocations = agentAnswer.ToolInvocations
	}
	return answer, nil
}

func (s *Service) synthesize(ctx context.Context, query string, candidates []domain.Candidate) (string, error) {
	prompt := synthesisPrompt(query, BuildContext(candidates))
	response, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("synthesize answer: %w", err)
	}
	return strings.TrimSpace(response), nil
}

func combineAnswers(structured, documents string) string {
	structured = strings.TrimSpace(structured)
	documents = strings.TrimSpace(documents)
	switch {
	case structured == "":
		return documents
	case documents == "":
		return structured
	default:
		return structured + "\n\n" + documents
	}
}
