package rag

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/safesphere/backend/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func TestAnswerWithoutProviderServesFinalFallback(t *testing.T) {
	answerer := NewAnswerer(nil, nil, nil, 0, 0)

	result := answerer.Answer(context.Background(), "How do I file a complaint?", "org-1")

	assert.Equal(t, FinalFallbackAnswer, result.Answer)
	assert.Zero(t, result.ContextChunks)
	assert.True(t, result.FallbackUsed)
}

func TestNewAnswererDefaultsTopK(t *testing.T) {
	answerer := NewAnswerer(nil, nil, nil, 0, 0.75)

	assert.Equal(t, 4, answerer.topK)
}

func TestRetrieveWithoutVectorDBIsAMiss(t *testing.T) {
	answerer := NewAnswerer(nil, nil, nil, 4, 0.75)

	chunks := answerer.retrieve(context.Background(), "question", "org-1")

	assert.Nil(t, chunks)
}
