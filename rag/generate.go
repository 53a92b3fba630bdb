package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/reddygtvs/Archived-News-RAG/llm"
	"github.com/reddygtvs/Archived-News-RAG/retrieval"
)

const (
	// NoContextPrefix marks grounded answers that fell back to ungrounded
	// generation because retrieval found nothing.
	NoContextPrefix = "(No relevant 2015 articles found to augment response.)\n\n"

	// CombinedParseFailure replaces the standard answer when a combined
	// response does not carry both section labels.
	CombinedParseFailure = "Error parsing standard response from combined output."

	labelStandard = "STANDARD_RESPONSE:"
	labelRAG      = "RAG_RESPONSE:"
)

// GenerateStandard answers the raw query with no retrieved context.
func (s *Service) GenerateStandard(ctx context.Context, query string) (string, time.Duration) {
	s.logger.Printf("generating standard response for query %q", truncate(query, 100))
	return s.callModel(ctx, s.generatorModel, query, "standard generator")
}

// GenerateRAG retrieves articles, assembles the bounded context, and runs a
// grounded generation. With zero retrieved articles it transparently falls
// back to standard generation, prefixing the answer with NoContextPrefix.
func (s *Service) GenerateRAG(ctx context.Context, query string) RAGResult {
	s.logger.Printf("generating RAG response for query %q", truncate(query, 100))

	articles, retrievalDuration := s.RetrieveRelevantArticles(ctx, query)

	if len(articles) == 0 {
		s.logger.Printf("no relevant articles found, falling back to standard generation")
		answer, generationDuration := s.GenerateStandard(ctx, query)
		return RAGResult{
			Answer:             NoContextPrefix + answer,
			Sources:            nil,
			RetrievalDuration:  retrievalDuration,
			GenerationDuration: generationDuration,
			ContextChars:       0,
		}
	}

	contextBlock, contextChars := retrieval.AssembleContext(articles, s.maxArticleChars)
	prompt := ragPrompt(contextBlock, query)
	answer, generationDuration := s.callModel(ctx, s.generatorModel, prompt, "RAG generator")

	return RAGResult{
		Answer:             answer,
		Sources:            retrieval.Summarize(articles),
		RetrievalDuration:  retrievalDuration,
		GenerationDuration: generationDuration,
		ContextChars:       contextChars,
	}
}

// GenerateCombined produces both answers from a single model call and
// splits the output on the two section labels. A malformed response keeps
// the grounded answer and marks the standard one as a parse failure rather
// than discarding a successful generation.
func (s *Service) GenerateCombined(ctx context.Context, query string) CombinedResult {
	s.logger.Printf("generating combined responses for query %q", truncate(query, 100))

	articles, retrievalDuration := s.RetrieveRelevantArticles(ctx, query)

	if len(articles) == 0 {
		s.logger.Printf("no relevant articles found, falling back to standard generation")
		answer, generationDuration := s.GenerateStandard(ctx, query)
		return CombinedResult{
			Standard:           answer,
			RAG:                NoContextPrefix + answer,
			Sources:            nil,
			RetrievalDuration:  retrievalDuration,
			GenerationDuration: generationDuration,
			ContextChars:       0,
		}
	}

	contextBlock, contextChars := retrieval.AssembleContext(articles, s.maxArticleChars)
	prompt := combinedPrompt(contextBlock, query)
	raw, generationDuration := s.callModel(ctx, s.generatorModel, prompt, "combined generator")

	standard, ragAnswer := SplitCombinedResponse(raw)
	if standard == CombinedParseFailure {
		s.logger.Printf("combined response missing section labels, treating whole output as RAG answer")
	}

	return CombinedResult{
		Standard:           standard,
		RAG:                ragAnswer,
		Sources:            retrieval.Summarize(articles),
		RetrievalDuration:  retrievalDuration,
		GenerationDuration: generationDuration,
		ContextChars:       contextChars,
	}
}

// SplitCombinedResponse splits a combined generation on the two section
// labels. When both labels are present it returns the standard and RAG
// sections; otherwise the whole output is treated as the RAG answer and the
// standard side carries CombinedParseFailure.
func SplitCombinedResponse(raw string) (string, string) {
	if strings.Contains(raw, labelStandard) && strings.Contains(raw, labelRAG) {
		parts := strings.SplitN(raw, labelRAG, 2)
		standard := strings.TrimSpace(strings.Replace(parts[0], labelStandard, "", 1))
		return standard, strings.TrimSpace(parts[1])
	}
	return CombinedParseFailure, raw
}

// callModel issues one generation call, measures its wall-clock duration,
// and converts every non-success outcome into a descriptive placeholder.
// Upstream failures never propagate as errors and are never retried here.
func (s *Service) callModel(ctx context.Context, model, prompt, description string) (string, time.Duration) {
	start := time.Now()
	completion := s.model.Complete(ctx, model, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
	duration := time.Since(start)

	s.logger.Printf("%s call took %.4fs (outcome: %s)", description, duration.Seconds(), completion.Outcome)

	switch completion.Outcome {
	case llm.OutcomeSuccess:
		return completion.Text, duration
	case llm.OutcomeBlocked:
		s.logger.Printf("%s blocked by safety settings: %s", description, completion.Detail)
		return fmt.Sprintf("Error: Content generation blocked by safety settings (%s).", completion.Detail), duration
	case llm.OutcomeMalformed:
		s.logger.Printf("%s returned no usable candidates: %s", description, completion.Detail)
		return "Error: Content generation failed (no candidates).", duration
	default:
		s.logger.Printf("%s call failed: %s", description, completion.Detail)
		return fmt.Sprintf("Error: Failed to generate %s response.", description), duration
	}
}

func ragPrompt(contextBlock, query string) string {
	return fmt.Sprintf(`You are an AI assistant answering questions, leveraging the full text of relevant news articles published in 2015 provided in the context below.

Instructions:
1. Analyze the full text provided in the "Context" section below to answer the "Question". Each article's text is clearly marked with [ARTICLE START | URL: <URL> | DATE: <DATE>] and [ARTICLE END].
2. Synthesize information *across* the provided articles if they cover the same topic from different angles.
3. Extract specific details, names, dates, opinions, and arguments directly from the article text.
4. When using information from a specific article, CITE IT using numbered references like [1], [2], [3] corresponding to the article numbers.
5. If the provided articles are relevant but don't fully answer the question, use your general knowledge to supplement BUT explicitly state that you are adding information beyond the provided 2015 articles.
6. If the provided articles seem completely irrelevant, state that the 2015 context was not helpful and answer based on your general knowledge.
7. Answer the specific question asked comprehensively, using the depth provided by the full articles.

Context:
---
%s
---

Question: %s

Answer:`, contextBlock, query)
}

func combinedPrompt(contextBlock, query string) string {
	return fmt.Sprintf(`Generate TWO comprehensive responses to the following question:

RESPONSE 1 - STANDARD:
- Provide a detailed, comprehensive answer using only your general knowledge
- Include specific examples, dates, and key details where relevant

RESPONSE 2 - RAG:
- Analyze the provided 2015 news article context below
- Cite sources using numbered references [1], [2], [3] corresponding to article numbers
- Synthesize information across articles when relevant
- Extract specific details, names, dates, and arguments from the articles

Context:
---
%s
---

Question: %s

Format your response as:
STANDARD_RESPONSE:
[comprehensive standard answer here]

RAG_RESPONSE:
[comprehensive context-based answer here with citations]`, contextBlock, query)
}
