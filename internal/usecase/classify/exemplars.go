package classify

import "github.com/kailas-cloud/askdex/internal/domain"

// exemplars are the fixed phrases whose embeddings anchor each query
// category. Computed into vectors once at warmup.
var exemplars = map[domain.QueryType][]string{
	domain.QueryTypeRAG: {
		"What does document X say about topic Y?",
		"Summarize the key points from the report",
		"What are the main findings in the research paper?",
		"Explain the methodology described in the document",
		"What recommendations are mentioned in the proposal?",
	},
	domain.QueryTypeSQL: {
		"What is the average value in column X?",
		"How many rows have status completed?",
		"Calculate the total sales by region",
		"Show me the top 10 customers by revenue",
		"Filter the data where amount is greater than 1000",
	},
	domain.QueryTypePrediction: {
		"Forecast sales for next quarter",
		"What will the trend be in 6 months?",
		"Predict the peak demand period",
		"What is the probability of exceeding the target?",
		"Project the growth rate for next year",
	},
}
