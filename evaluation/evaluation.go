package evaluation

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// NotApplicable is the sentinel value for criteria that legitimately do not
// apply, such as groundedness on the standard (ungrounded) side.
const NotApplicable = "N/A"

// GroundednessCriterion is the one RAG-only criterion allowed to be the
// sentinel instead of an integer score.
const GroundednessCriterion = "groundedness_to_source"

var standardCriteria = []string{
	"relevance",
	"factual_accuracy_2015",
	"specificity_2015",
	"temporal_accuracy",
	"completeness",
	"coherence",
	"lack_of_hallucination_2015",
}

var ragCriteria = append([]string{GroundednessCriterion}, standardCriteria...)

// Score is an evaluation criterion value: an integer 1-5 or the "N/A"
// sentinel. Unmarshalling tolerates junk values so that a single bad field
// can be coerced during validation instead of failing the whole document.
type Score struct {
	Value int
	NA    bool

	valid bool
}

func IntScore(value int) Score {
	return Score{Value: value, valid: true}
}

func NAScore() Score {
	return Score{NA: true, valid: true}
}

// InRange reports whether the score is a well-formed integer in [1,5].
func (s Score) InRange() bool {
	return s.valid && !s.NA && s.Value >= 1 && s.Value <= 5
}

func (s *Score) UnmarshalJSON(data []byte) error {
	var number int
	if err := json.Unmarshal(data, &number); err == nil {
		s.Value = number
		s.valid = true
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		if text == NotApplicable {
			s.NA = true
			s.valid = true
			return nil
		}
		// Some models emit the score as a quoted number.
		if parsed, convErr := strconv.Atoi(text); convErr == nil {
			s.Value = parsed
			s.valid = true
		}
		return nil
	}

	// Unexpected shapes (floats, booleans, null) are left invalid and
	// handled during validation.
	return nil
}

func (s Score) MarshalJSON() ([]byte, error) {
	if s.NA || !s.valid {
		return json.Marshal(NotApplicable)
	}
	return json.Marshal(s.Value)
}

// Evaluation is a complete comparative judgment of a standard and a RAG
// answer. If a value of this type exists, both score maps carry their full
// criterion sets; partially populated evaluations are never constructed.
type Evaluation struct {
	StandardScores     map[string]Score `json:"standard_scores"`
	RAGScores          map[string]Score `json:"rag_scores"`
	ComparativeSummary string           `json:"comparative_summary"`
}

// ParseEvaluation extracts and validates an Evaluation from raw evaluator
// output. Any structural defect fails the whole parse; the only tolerated
// irregularity is a malformed groundedness value, which is coerced to the
// sentinel because that criterion is expected to occasionally be absent.
func ParseEvaluation(raw string) (*Evaluation, error) {
	payload, ok := ExtractJSON(raw)
	if !ok {
		return nil, fmt.Errorf("no JSON structure found in evaluator response")
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &top); err != nil {
		return nil, fmt.Errorf("decode evaluator JSON: %w", err)
	}

	for _, key := range []string{"standard_scores", "rag_scores", "comparative_summary"} {
		if _, present := top[key]; !present {
			return nil, fmt.Errorf("evaluator JSON missing required key %q", key)
		}
	}
	if len(top) != 3 {
		return nil, fmt.Errorf("evaluator JSON has unexpected extra keys (%d total)", len(top))
	}

	var eval Evaluation
	if err := json.Unmarshal([]byte(payload), &eval); err != nil {
		return nil, fmt.Errorf("decode evaluation fields: %w", err)
	}

	if err := requireCriteria(eval.StandardScores, standardCriteria, "standard_scores"); err != nil {
		return nil, err
	}
	if err := requireCriteria(eval.RAGScores, ragCriteria, "rag_scores"); err != nil {
		return nil, err
	}

	grounded := eval.RAGScores[GroundednessCriterion]
	if !grounded.InRange() && !grounded.NA {
		eval.RAGScores[GroundednessCriterion] = NAScore()
	}

	return &eval, nil
}

func requireCriteria(scores map[string]Score, criteria []string, field string) error {
	if scores == nil {
		return fmt.Errorf("evaluator JSON field %q is not a score map", field)
	}
	for _, criterion := range criteria {
		if _, present := scores[criterion]; !present {
			return fmt.Errorf("evaluator JSON field %q missing criterion %q", field, criterion)
		}
	}
	return nil
}
