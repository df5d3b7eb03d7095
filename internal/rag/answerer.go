package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/safesphere/backend/internal/cache/redis"
	"github.com/safesphere/backend/internal/llm"
	"github.com/safesphere/backend/internal/metrics"
	"github.com/safesphere/backend/internal/vector/milvus"
	"github.com/safesphere/backend/pkg/logger"
	"github.com/safesphere/backend/pkg/utils"
)

// FinalFallbackAnswer is the terminal answer when generation fails on
// both the primary and the reduced-context attempt.
const FinalFallbackAnswer = "I'm sorry, I'm not able to answer that right now. Please reach out to your HR team or any member of your Internal Complaints Committee directly; they can help with policy questions and with filing a complaint."

const embeddingCacheTTL = 24 * time.Hour

// Answerer implements the advisory chat path:
// RETRIEVE -> (hit|miss) -> FALLBACK_CONTEXT -> GENERATE -> (success|failure) -> FINAL_FALLBACK.
// There are no retries beyond that single chain, and Answer never
// returns an error.
type Answerer struct {
	llm       *llm.Client
	vectorDB  *milvus.Client
	cache     *redis.Client
	topK      int
	threshold float32
}

// NewAnswerer accepts nil vectorDB and cache; both are treated as a
// permanent retrieval miss / cache miss respectively.
func NewAnswerer(llmClient *llm.Client, vectorDB *milvus.Client, cache *redis.Client, topK int, threshold float32) *Answerer {
	if topK <= 0 {
		topK = 4
	}
	return &Answerer{
		llm:       llmClient,
		vectorDB:  vectorDB,
		cache:     cache,
		topK:      topK,
		threshold: threshold,
	}
}

// Result carries the answer plus how it was produced, for persistence
// and response metadata. FallbackUsed is true whenever the answer was
// not grounded in retrieved chunks.
type Result struct {
	Answer        string
	ContextChunks int
	FallbackUsed  bool
}

// Answer responds to a policy question scoped to an organization's
// knowledge base. Every failure mode degrades along the fallback chain;
// the caller always receives a usable string.
func (a *Answerer) Answer(ctx context.Context, question, orgID string) Result {
	chunks := a.retrieve(ctx, question, orgID)
	metrics.RetrievalChunks.Observe(float64(len(chunks)))

	retrieved := len(chunks)
	outcome := "retrieved"
	if len(chunks) == 0 {
		chunks = selectFallbackContext(question)
		outcome = "fallback_corpus"
	}

	answer, err := a.generate(ctx, question, chunks)
	if err == nil {
		metrics.ChatAnswers.WithLabelValues(outcome).Inc()
		return Result{Answer: answer, ContextChunks: retrieved, FallbackUsed: retrieved == 0}
	}

	logger.Warn("chat generation failed, retrying with reduced context", zap.Error(err))

	answer, err = a.generate(ctx, question, fallbackCorpus[:2])
	if err == nil {
		metrics.ChatAnswers.WithLabelValues("fallback_corpus").Inc()
		return Result{Answer: answer, ContextChunks: retrieved, FallbackUsed: true}
	}

	logger.Error("chat generation failed on fallback context", zap.Error(err))
	metrics.ChatAnswers.WithLabelValues("apology").Inc()
	metrics.FallbackTotal.WithLabelValues("chat").Inc()
	return Result{Answer: FinalFallbackAnswer, ContextChunks: retrieved, FallbackUsed: true}
}

// retrieve embeds the question and searches the org's knowledge base.
// Any failure, absent configuration included, is a retrieval miss.
func (a *Answerer) retrieve(ctx context.Context, question, orgID string) []string {
	if a.vectorDB == nil || a.llm == nil || !a.llm.Configured() {
		return nil
	}

	embedding := a.embedWithCache(ctx, question)
	if embedding == nil {
		return nil
	}

	results, err := a.vectorDB.Search(ctx, embedding, a.topK, orgID)
	if err != nil {
		logger.Warn("vector search failed, using fallback corpus", zap.Error(err))
		return nil
	}

	var chunks []string
	for _, r := range results {
		if r.Score >= a.threshold {
			chunks = append(chunks, r.Content)
		}
	}
	return chunks
}

func (a *Answerer) embedWithCache(ctx context.Context, question string) []float32 {
	key := utils.HashString(question)

	if a.cache != nil {
		if embedding, ok, err := a.cache.GetEmbedding(ctx, key); err == nil && ok {
			metrics.CacheHits.WithLabelValues("embedding").Inc()
			return embedding
		}
		metrics.CacheMisses.WithLabelValues("embedding").Inc()
	}

	embedding, err := a.llm.GenerateEmbedding(ctx, question)
	if err != nil {
		logger.Warn("question embedding failed, using fallback corpus", zap.Error(err))
		return nil
	}

	if a.cache != nil {
		if err := a.cache.SetEmbedding(ctx, key, embedding, embeddingCacheTTL); err != nil {
			logger.Debug("failed to cache embedding", zap.Error(err))
		}
	}

	return embedding
}

const answerSystemPrompt = `You are a supportive workplace-safety assistant helping employees understand their rights and the complaint process. Answer ONLY from the context provided. Be empathetic and concise: 2-4 sentences. If the context does not contain the answer, say so plainly and suggest speaking to HR or the Internal Complaints Committee. Never speculate about legal outcomes.`

func (a *Answerer) generate(ctx context.Context, question string, contextChunks []string) (string, error) {
	if a.llm == nil {
		return "", llm.ErrNotConfigured
	}

	var builder strings.Builder
	builder.WriteString("Context:\n")
	for i, chunk := range contextChunks {
		builder.WriteString(fmt.Sprintf("[%d] %s\n", i+1, chunk))
	}
	builder.WriteString("\nQuestion: ")
	builder.WriteString(question)

	resp, err := a.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: answerSystemPrompt,
		UserPrompt:   builder.String(),
		Temperature:  0.3,
		MaxTokens:    400,
	})
	if err != nil {
		return "", err
	}

	metrics.LLMTokensUsed.WithLabelValues(a.llm.Model(), "chat").Add(float64(resp.Usage.TotalTokens))

	return resp.Content, nil
}
