package domain

// QueryType is the handling strategy chosen for a query.
type QueryType string

const (
	// QueryTypeRAG routes to document retrieval and synthesis.
	QueryTypeRAG QueryType = "rag"
	// QueryTypeSQL routes to the structured-data agent.
	QueryTypeSQL QueryType = "sql"
	// QueryTypePrediction routes to forecasting over extracted tables.
	QueryTypePrediction QueryType = "prediction"
	// QueryTypeHybrid combines more than one strategy.
	QueryTypeHybrid QueryType = "hybrid"
)

// Classification is the outcome of semantic query classification.
type Classification struct {
	Type       QueryType
	Confidence float64
	Scores     map[QueryType]float64
}

// DefaultClassifyThreshold is the minimum exemplar similarity for a
// confident classification.
const DefaultClassifyThreshold = 0.6

// UsesRAG reports whether the classified query needs document retrieval.
func (c Classification) UsesRAG() bool {
	return c.Type == QueryTypeRAG || c.Type == QueryTypeHybrid
}

// UsesSQL reports whether the classified query needs the structured-data agent.
func (c Classification) UsesSQL() bool {
	return c.Type == QueryTypeSQL || c.Type == QueryTypeHybrid
}

// UsesPrediction reports whether the classified query needs forecasting.
func (c Classification) UsesPrediction() bool {
	return c.Type == QueryTypePrediction || c.Type == QueryTypeHybrid
}
