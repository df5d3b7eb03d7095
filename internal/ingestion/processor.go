package ingestion

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/safesphere/backend/internal/llm"
	"github.com/safesphere/backend/internal/metrics"
	"github.com/safesphere/backend/internal/storage/models"
	"github.com/safesphere/backend/internal/storage/sqlite"
	"github.com/safesphere/backend/internal/vector/milvus"
	"github.com/safesphere/backend/pkg/logger"
	"github.com/safesphere/backend/pkg/utils"
)

// Processor ingests organization policy documents (POSH policies, ICC
// procedures, employee handbooks) into the retrieval store. Chunking is
// sentence-aware so a chunk never splits a clause mid-sentence, which
// matters for policy text where qualifiers change meaning.
type Processor struct {
	db            *sqlite.Client
	vectorDB      *milvus.Client
	llmClient     *llm.Client
	maxChunkChars int
}

func NewProcessor(db *sqlite.Client, vectorDB *milvus.Client, llmClient *llm.Client) *Processor {
	return &Processor{
		db:            db,
		vectorDB:      vectorDB,
		llmClient:     llmClient,
		maxChunkChars: 1000,
	}
}

// ProcessDocument cleans the uploaded HTML, chunks it, embeds the
// chunks and stores them. Returns the document ID and chunk count.
func (p *Processor) ProcessDocument(ctx context.Context, orgID, title, htmlContent string) (string, int, error) {
	logger.Info("Processing policy document",
		zap.String("org_id", orgID),
		zap.String("title", title),
	)

	cleanedText := cleanHTML(htmlContent)
	if cleanedText == "" {
		return "", 0, fmt.Errorf("no content extracted from document")
	}

	if title == "" {
		title = extractTitle(htmlContent)
	}

	docID := utils.HashString(orgID + "|" + title + "|" + cleanedText[:min(len(cleanedText), 200)])

	chunks, err := chunkSentences(cleanedText, p.maxChunkChars)
	if err != nil {
		return "", 0, fmt.Errorf("failed to chunk document: %w", err)
	}
	if len(chunks) == 0 {
		return "", 0, fmt.Errorf("document produced no chunks")
	}
	logger.Info("Document chunked", zap.Int("chunks", len(chunks)))

	embeddings, err := p.llmClient.GenerateBatchEmbeddings(ctx, chunks)
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return "", 0, fmt.Errorf("embedding count mismatch: got %d, expected %d", len(embeddings), len(chunks))
	}

	doc := &models.KnowledgeDoc{
		ID:         docID,
		OrgID:      orgID,
		Title:      title,
		ChunkCount: len(chunks),
		CreatedAt:  time.Now(),
	}
	err = p.db.InsertKnowledgeDoc(doc)
	if err != nil {
		return "", 0, fmt.Errorf("failed to insert document record: %w", err)
	}

	vectorChunks := make([]milvus.PolicyChunk, 0, len(chunks))
	for i, chunkText := range chunks {
		vectorChunks = append(vectorChunks, milvus.PolicyChunk{
			ID:        fmt.Sprintf("%s_chunk_%d", docID, i),
			Embedding: embeddings[i],
			Content:   chunkText,
			OrgID:     orgID,
			DocID:     docID,
			Title:     title,
			CreatedAt: time.Now(),
		})
	}

	if p.vectorDB != nil {
		err = p.vectorDB.Insert(ctx, vectorChunks)
		if err != nil {
			return "", 0, fmt.Errorf("failed to insert into vector store: %w", err)
		}
	}

	metrics.DocumentsIngested.Inc()
	logger.Info("Policy document ingested",
		zap.String("doc_id", docID),
		zap.Int("chunks", len(vectorChunks)),
	)

	return docID, len(vectorChunks), nil
}

var whitespaceRE = regexp.MustCompile(`\s+`)

func cleanHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	doc.Find("script, style, nav, footer, header, aside").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	text := doc.Find("body").Text()
	if text == "" {
		text = doc.Text()
	}

	text = whitespaceRE.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func extractTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "Untitled"
	}

	title := doc.Find("title").First().Text()
	if title == "" {
		title = doc.Find("h1").First().Text()
	}
	if title == "" {
		title = "Untitled"
	}

	return strings.TrimSpace(title)
}

// chunkSentences packs whole sentences into chunks of at most
// maxChars. A single sentence longer than maxChars becomes its own
// chunk rather than being split.
func chunkSentences(text string, maxChars int) ([]string, error) {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, err
	}

	var chunks []string
	var current strings.Builder

	for _, sentence := range doc.Sentences() {
		s := strings.TrimSpace(sentence.Text)
		if s == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+len(s)+1 > maxChars {
			chunks = append(chunks, current.String())
			current.Reset()
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(s)
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
