package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"github.com/reddygtvs/Archived-News-RAG/llm"
)

// maxInputChars bounds the answer text embedded in the evaluator prompt so
// a runaway generation cannot blow up the evaluation call.
const maxInputChars = 10000

// Outcome is the terminal state of one evaluation: a complete Evaluation or
// an explicit error marker. Callers must branch on which shape they hold; a
// partially populated evaluation never exists.
type Outcome struct {
	Evaluation *Evaluation
	Error      string
}

func (o Outcome) Failed() bool {
	return o.Evaluation == nil
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.Failed() {
		return json.Marshal(map[string]string{"error": o.Error})
	}
	return json.Marshal(o.Evaluation)
}

// Evaluator sends a structured-JSON comparison request to a stronger model
// and parses the reply. There are no retries and no intermediate state: one
// request either ends in a valid evaluation or an error marker.
type Evaluator struct {
	client llm.Client
	model  string
	logger *log.Logger
}

func NewEvaluator(client llm.Client, model string, logger *log.Logger) *Evaluator {
	if logger == nil {
		logger = log.Default()
	}

	return &Evaluator{
		client: client,
		model:  model,
		logger: logger,
	}
}

func (e *Evaluator) Evaluate(ctx context.Context, query, standard, ragAnswer string) (Outcome, time.Duration) {
	prompt := buildPrompt(query, clip(standard), clip(ragAnswer))

	start := time.Now()
	completion := e.client.Complete(ctx, e.model, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
	duration := time.Since(start)

	e.logger.Printf("evaluator call took %.4fs (outcome: %s)", duration.Seconds(), completion.Outcome)

	if !completion.OK() {
		e.logger.Printf("evaluator call failed (%s): %s", completion.Outcome, completion.Detail)
		return Outcome{Error: fmt.Sprintf("evaluator call failed (%s): %s", completion.Outcome, completion.Detail)}, duration
	}

	eval, err := ParseEvaluation(completion.Text)
	if err != nil {
		e.logger.Printf("could not parse evaluator response: %v (raw prefix: %q)", err, clipTo(completion.Text, 500))
		return Outcome{Error: fmt.Sprintf("JSON parsing failed: %v", err)}, duration
	}

	return Outcome{Evaluation: eval}, duration
}

func clip(text string) string {
	return clipTo(text, maxInputChars)
}

func clipTo(text string, max int) string {
	if len(text) <= max {
		return text
	}
	// Never cut inside a UTF-8 sequence; the clipped text is re-embedded
	// in a prompt and must stay valid.
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max] + "... (truncated for evaluation)"
}

func buildPrompt(query, standard, ragAnswer string) string {
	return fmt.Sprintf(`You are an expert evaluator assessing the quality of two AI-generated answers (Standard vs. RAG) to a query about events/topics from the year 2015. The RAG response had access to 2015 news articles.

**Task:** Evaluate both responses on the criteria below (1=Very Poor, 5=Excellent), focusing *only* on the 2015 context. Output **only** a valid JSON object adhering strictly to the specified format. Scores must be integers between 1 and 5.

**Criteria:**
1.  **Relevance (1-5):** How directly does the response address the specific query?
2.  **Factual Accuracy (2015 Context) (1-5):** Accuracy of info *about 2015*? (Ignore other periods).
3.  **Specificity/Detail (2015 Context) (1-5):** Richness in specific 2015 details (names, dates, figures, etc.)?
4.  **Groundedness (RAG Only) (1-5):** Does the RAG response seem based on plausible 2015 sources? Score 1 (generic) to 5 (source-based). Assign "N/A" (as a string) for Standard.
5.  **Temporal Accuracy (1-5):** Does the response correctly stay within/reference the 2015 timeframe?
6.  **Completeness (1-5):** How thoroughly does the response address all aspects of the query?
7.  **Coherence/Readability (1-5):** How well-structured and clear is the response?
8.  **Lack of Hallucination (2015 Context) (1-5):** How free from plausible but false info *about 2015*?

**Query:**
`+"```text\n%s\n```"+`

**Standard LLM Response:**
`+"```text\n%s\n```"+`

**RAG LLM Response:**
`+"```text\n%s\n```"+`

**Instructions to Evaluator:**
Return your ratings in the *exact* JSON format below (no extra keys, no comments):

`+"```json"+`
{
  "standard_scores": {
    "relevance": <score_int>,
    "factual_accuracy_2015": <score_int>,
    "specificity_2015": <score_int>,
    "temporal_accuracy": <score_int>,
    "completeness": <score_int>,
    "coherence": <score_int>,
    "lack_of_hallucination_2015": <score_int>
  },
  "rag_scores": {
    "relevance": <score_int>,
    "factual_accuracy_2015": <score_int>,
    "specificity_2015": <score_int>,
    "groundedness_to_source": <score_int_or_NA_string>,
    "temporal_accuracy": <score_int>,
    "completeness": <score_int>,
    "coherence": <score_int>,
    "lack_of_hallucination_2015": <score_int>
  },
  "comparative_summary": "<1-2 sentence comparison focusing on 2015 context>"
}
`+"```", query, standard, ragAnswer)
}
