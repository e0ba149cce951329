package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"sop-agent/internal/decision"
	"sop-agent/internal/llm"
	"sop-agent/internal/models"
)

// Retriever returns the top-K most relevant chunks for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error)
}

// IndexResolver resolves the current index (load-or-build) for a query.
// Resolved on every call so configuration changes take effect without
// a restart.
type IndexResolver func(ctx context.Context) (Retriever, error)

// ModelResolver binds the currently configured completion model.
type ModelResolver func() (llms.Model, error)

const (
	// Deterministic-as-possible output for compliance answers.
	temperature = 0.0

	answerSystemPrompt = "You are a helpful SOP policy assistant. Use ONLY the provided context to answer the question. If the context does not contain the answer, say so."

	decisionSystemPrompt = "You are a Risk/InfoSec Access Control Compliance Agent.\n" +
		"Use ONLY the retrieved SOP context.\n" +
		"Return JSON ONLY (no code fences, no prose) following this schema: " + decision.SchemaHint + "\n" +
		"Rules:\n" +
		"1) The 'citations' array must include real SOP section IDs present in the retrieved text (e.g., AC-5.1, AC-2.2). Do not invent IDs.\n" +
		"2) If the retrieved context lacks enough info, set verdict=CONDITIONAL and state exactly what's missing.\n" +
		"3) Keep 'rationale' short (<= 2 sentences)."
)

// Pipeline runs retrieval-augmented queries in plain or decision mode.
type Pipeline struct {
	resolveIndex IndexResolver
	resolveModel ModelResolver
}

func New(resolveIndex IndexResolver, resolveModel ModelResolver) *Pipeline {
	return &Pipeline{resolveIndex: resolveIndex, resolveModel: resolveModel}
}

// Query retrieves the top-K chunks for the question and synthesizes
// either a plain answer (Text) or a decision object (JSON). In decision
// mode a single repair round-trip is attempted on malformed output;
// if that also fails to parse, the raw repair text is returned as
// {"raw": ...} rather than failing the query. No other retries.
func (p *Pipeline) Query(ctx context.Context, question string, decisionMode bool, topK int) (*models.AnswerResult, error) {
	idx, err := p.resolveIndex(ctx)
	if err != nil {
		return nil, err
	}
	model, err := p.resolveModel()
	if err != nil {
		return nil, err
	}

	chunks, err := idx.Retrieve(ctx, question, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve context: %w", err)
	}

	if !decisionMode {
		answer, err := llm.Generate(ctx, model, answerSystemPrompt, contextPrompt(chunks, question), temperature)
		if err != nil {
			return nil, err
		}
		return &models.AnswerResult{Text: answer, Sources: chunks}, nil
	}

	raw, err := llm.Generate(ctx, model, decisionSystemPrompt, contextPrompt(chunks, question), temperature)
	if err != nil {
		return nil, err
	}

	data := decision.ExtractJSON(raw)
	if data == nil {
		// retry once if JSON malformed
		log.Debug().Str("response", raw).Msg("Malformed decision JSON, requesting repair")
		repair := fmt.Sprintf("Return ONLY valid JSON (no code fences) per schema %s. Fix this: %s",
			decision.SchemaHint, raw)
		fixed, err := llm.Generate(ctx, model, decisionSystemPrompt, repair, temperature)
		if err != nil {
			return nil, err
		}
		data = decision.ExtractJSON(fixed)
		if data == nil {
			data = map[string]any{"raw": fixed}
		}
	}

	return &models.AnswerResult{JSON: data, Sources: chunks}, nil
}

// contextPrompt stuffs the retrieved chunks above the question.
func contextPrompt(chunks []models.RetrievedChunk, question string) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for _, chunk := range chunks {
		b.WriteString(chunk.Content)
		b.WriteString("\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}
