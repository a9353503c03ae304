package ask

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/askdex/internal/domain"
)

const noContext = "No relevant information found in the knowledge base."

// BuildContext formats retrieved candidates into the numbered source
// block the synthesis prompt expects.
func BuildContext(candidates []domain.Candidate) string {
	if len(candidates) == 0 {
		return noContext
	}

	var b strings.Builder
	b.WriteString("=== RELEVANT INFORMATION ===\n\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "[Source %d] (Relevance: %.2f)\n", i+1, c.Similarity)
		if c.DocumentID != "" {
			fmt.Fprintf(&b, "From: %s\n", c.DocumentID)
		}
		b.WriteString(c.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

func synthesisPrompt(query, context string) string {
	return fmt.Sprintf(`You are a helpful AI assistant. Answer the user's question in a natural, conversational way.

**Available Data:**
%s

**User Question:** %s

**Instructions:**
1. Answer directly and confidently based on the data above
2. The data has been PRE-FILTERED according to the user's requirements
3. Present results clearly without adding disclaimers about data filtering or time periods
4. For counting/aggregation questions, provide the numbers and list the relevant items
5. Only express uncertainty if there's genuinely NO relevant data in the results
6. Cite sources using [Source N] only when referencing specific document chunks
7. For "top N" or "highest" questions, scan ALL the data above and sort by the requested metric before answering

**Your Answer:**`, context, query)
}
