package chi

import "github.com/kailas-cloud/askdex/internal/domain"

// ErrorCode is a machine-readable error identifier returned to clients.
type ErrorCode string

const (
	CodeBadRequest         ErrorCode = "bad_request"
	CodeValidationFailed   ErrorCode = "validation_failed"
	CodeScopeNotFound      ErrorCode = "scope_not_found"
	CodeRateLimited        ErrorCode = "rate_limited"
	CodeEmbeddingProvider  ErrorCode = "embedding_provider_error"
	CodeGenerationProvider ErrorCode = "generation_provider_error"
	CodeAgentFailed        ErrorCode = "agent_failed"
	CodeInternalError      ErrorCode = "internal_error"
	CodeUnauthorized       ErrorCode = "unauthorized"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// TableInfoDTO describes one structured table available to the SQL agent.
type TableInfoDTO struct {
	Name     string   `json:"name"`
	Filename string   `json:"filename,omitempty"`
	Columns  []string `json:"columns,omitempty"`
	RowCount int      `json:"row_count,omitempty"`
}

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Scope  string         `json:"scope"`
	Query  string         `json:"query"`
	TopK   int            `json:"top_k,omitempty"`
	Tables []TableInfoDTO `json:"tables,omitempty"`
}

// SourceDTO is one retrieved evidence chunk.
type SourceDTO struct {
	ID          string   `json:"id"`
	DocumentID  string   `json:"document_id,omitempty"`
	Content     string   `json:"content"`
	Similarity  float64  `json:"similarity"`
	RerankScore *float64 `json:"rerank_score,omitempty"`
}

// ClassificationDTO reports the routing decision for a query.
type ClassificationDTO struct {
	Type       string             `json:"type"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores,omitempty"`
}

// QueryResponse is the body of a successful POST /query.
type QueryResponse struct {
	Answer          string            `json:"answer"`
	Method          string            `json:"method"`
	Classification  ClassificationDTO `json:"classification"`
	Sources         []SourceDTO       `json:"sources,omitempty"`
	TablesUsed      []string          `json:"tables_used,omitempty"`
	ToolInvocations []string          `json:"tool_invocations,omitempty"`
}

// ClassifyRequest is the body of POST /classify.
type ClassifyRequest struct {
	Query string `json:"query"`
}

// RetrieveRequest is the body of POST /retrieve.
type RetrieveRequest struct {
	Scope string `json:"scope"`
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// RetrieveResponse is the body of a successful POST /retrieve.
type RetrieveResponse struct {
	Sources []SourceDTO `json:"sources"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func classificationToDTO(c domain.Classification) ClassificationDTO {
	dto := ClassificationDTO{
		Type:       string(c.Type),
		Confidence: c.Confidence,
	}
	if len(c.Scores) > 0 {
		dto.Scores = make(map[string]float64, len(c.Scores))
		for k, v := range c.Scores {
			dto.Scores[string(k)] = v
		}
	}
	return dto
}

func sourcesToDTO(candidates []domain.Candidate) []SourceDTO {
	if len(candidates) == 0 {
		return nil
	}
	out := make([]SourceDTO, len(candidates))
	for i, c := range candidates {
		out[i] = SourceDTO{
			ID:          c.ID,
			DocumentID:  c.DocumentID,
			Content:     c.Content,
			Similarity:  c.Similarity,
			RerankScore: c.RerankScore,
		}
	}
	return out
}

func tablesFromDTO(tables []TableInfoDTO) []domain.TableInfo {
	if len(tables) == 0 {
		return nil
	}
	out := make([]domain.TableInfo, len(tables))
	for i, t := range tables {
		out[i] = domain.TableInfo{
			Name:     t.Name,
			Filename: t.Filename,
			Columns:  t.Columns,
			RowCount: t.RowCount,
		}
	}
	return out
}
