package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-chat-be/internal/pkg/apperror"
	"doc-chat-be/internal/repository/memory"
	"doc-chat-be/pkg/events"
	"doc-chat-be/pkg/ingest"
	"doc-chat-be/pkg/llm"
)

// --- Fakes ---

type fakeLLM struct {
	prompts []string
	answers []string
	err     error
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.prompts = append(f.prompts, prompt)
	if len(f.answers) > 0 {
		answer := f.answers[0]
		f.answers = f.answers[1:]
		return answer, nil
	}
	return "ok", nil
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	var b strings.Builder
	for _, m := range history {
		b.WriteString(m.Content)
	}
	return f.Generate(ctx, b.String(), opts...)
}

type fakeEmbedder struct {
	texts []string
	err   error
}

func (f *fakeEmbedder) Generate(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.texts = append(f.texts, text)
	return []float32{1, 0}, nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func newTestService(model *fakeLLM, embedder *fakeEmbedder) (IChatService, *memory.SessionRepository) {
	repo := memory.NewSessionRepository()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	publisher := events.NewPublisher(pubSub)
	svc := NewChatService(repo, ingest.NewIngestor(1000, 100), embedder, model, publisher, nopLogger{}, 4)
	return svc, repo
}

// --- Tests ---

func TestQueryFallbackPath(t *testing.T) {
	model := &fakeLLM{answers: []string{"Paris. Also, upload documents!"}}
	embedder := &fakeEmbedder{}
	svc, repo := newTestService(model, embedder)

	res, err := svc.Query(context.Background(), "fresh-session", "What is the capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "Paris. Also, upload documents!", res.Answer)
	assert.Equal(t, "fresh-session", res.SessionID)

	// Exactly one model call, carrying the fallback instruction and the raw query.
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "ask the user to upload files")
	assert.Contains(t, model.prompts[0], "What is the capital of France?")

	// No retrieval: nothing was ever embedded.
	assert.Empty(t, embedder.texts)

	// Fallback never writes conversation memory.
	s, ok := repo.Get("fresh-session")
	require.True(t, ok)
	s.Mu.Lock()
	defer s.Mu.Unlock()
	assert.Empty(t, s.Memory)
	assert.False(t, s.HasIndex())
}

func TestUploadThenQueryRetrievalPath(t *testing.T) {
	model := &fakeLLM{answers: []string{"The report covers revenue."}}
	embedder := &fakeEmbedder{}
	svc, repo := newTestService(model, embedder)

	up, err := svc.Upload(context.Background(), "s1", []ingest.File{
		{Name: "reports/report.txt", Data: []byte("Revenue grew 12% in Q3.")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, up.FilesIngested)
	assert.Equal(t, 1, up.ChunksIndexed)

	res, err := svc.Query(context.Background(), "s1", "Summarize the report")
	require.NoError(t, err)
	assert.Equal(t, "The report covers revenue.", res.Answer)

	// First question of the conversation: no condensation round-trip.
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Revenue grew 12% in Q3.")
	assert.Contains(t, model.prompts[0], "Document Source: report.txt")
	assert.NotContains(t, model.prompts[0], "reports/report.txt")

	// The answered turn is committed to memory.
	s, _ := repo.Get("s1")
	s.Mu.Lock()
	defer s.Mu.Unlock()
	require.Len(t, s.Memory, 1)
	assert.Equal(t, "Summarize the report", s.Memory[0].Question)
}

func TestFollowUpQuestionIsCondensed(t *testing.T) {
	model := &fakeLLM{answers: []string{
		"Q3 grew the most.",
		"What grew in the third quarter?", // condensation output
		"12 percent.",
	}}
	embedder := &fakeEmbedder{}
	svc, _ := newTestService(model, embedder)

	_, err := svc.Upload(context.Background(), "s1", []ingest.File{
		{Name: "report.txt", Data: []byte("Q3 revenue grew 12%.")},
	})
	require.NoError(t, err)

	_, err = svc.Query(context.Background(), "s1", "Which quarter grew most?")
	require.NoError(t, err)

	_, err = svc.Query(context.Background(), "s1", "and by how much?")
	require.NoError(t, err)

	// Second query: a condensation call then the final answer call.
	require.Len(t, model.prompts, 3)
	assert.Contains(t, model.prompts[1], "Combine the chat history and follow up question")
	assert.Contains(t, model.prompts[1], "and by how much?")

	// Retrieval ran on the condensed standalone question.
	assert.Contains(t, embedder.texts, "What grew in the third quarter?")

	// The final prompt carries the prior turn and the original question.
	assert.Contains(t, model.prompts[2], "Which quarter grew most?")
	assert.Contains(t, model.prompts[2], "question:\nand by how much?")
}

func TestReuploadReplacesIndexKeepsMemory(t *testing.T) {
	model := &fakeLLM{}
	embedder := &fakeEmbedder{}
	svc, repo := newTestService(model, embedder)

	_, err := svc.Upload(context.Background(), "s1", []ingest.File{
		{Name: "a.txt", Data: []byte("alpha knowledge")},
	})
	require.NoError(t, err)

	_, err = svc.Query(context.Background(), "s1", "first question")
	require.NoError(t, err)

	_, err = svc.Upload(context.Background(), "s1", []ingest.File{
		{Name: "b.txt", Data: []byte("beta knowledge")},
	})
	require.NoError(t, err)

	_, err = svc.Query(context.Background(), "s1", "second question")
	require.NoError(t, err)

	// The post-replacement context can only surface set B.
	finalPrompt := model.prompts[len(model.prompts)-1]
	assert.Contains(t, finalPrompt, "beta knowledge")
	assert.NotContains(t, finalPrompt, "alpha knowledge")

	// Memory survived the re-upload: both turns are present.
	s, _ := repo.Get("s1")
	s.Mu.Lock()
	defer s.Mu.Unlock()
	require.Len(t, s.Memory, 2)
	assert.Equal(t, "first question", s.Memory[0].Question)
}

func TestQueryModelFailureLeavesMemoryUntouched(t *testing.T) {
	model := &fakeLLM{}
	embedder := &fakeEmbedder{}
	svc, repo := newTestService(model, embedder)

	_, err := svc.Upload(context.Background(), "s1", []ingest.File{
		{Name: "a.txt", Data: []byte("content")},
	})
	require.NoError(t, err)

	model.err = errors.New("completion service down")
	_, err = svc.Query(context.Background(), "s1", "a question")
	require.Error(t, err)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindModelInvocation, appErr.Kind)
	assert.False(t, appErr.Kind.ClientCaused())

	// The failed turn was never committed.
	s, _ := repo.Get("s1")
	s.Mu.Lock()
	defer s.Mu.Unlock()
	assert.Empty(t, s.Memory)
}

func TestUploadNothingIngestibleIsClientError(t *testing.T) {
	svc, repo := newTestService(&fakeLLM{}, &fakeEmbedder{})

	_, err := svc.Upload(context.Background(), "s1", []ingest.File{
		{Name: "image.png", Data: []byte{0x89}},
	})
	require.Error(t, err)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindIngestion, appErr.Kind)
	assert.True(t, appErr.Kind.ClientCaused())

	// The session, if it exists at all, still has no index: a later query
	// takes the fallback path.
	if s, ok := repo.Get("s1"); ok {
		s.Mu.Lock()
		assert.False(t, s.HasIndex())
		s.Mu.Unlock()
	}
}

func TestUploadEmbeddingFailureKeepsPriorIndex(t *testing.T) {
	model := &fakeLLM{}
	embedder := &fakeEmbedder{}
	svc, _ := newTestService(model, embedder)

	_, err := svc.Upload(context.Background(), "s1", []ingest.File{
		{Name: "a.txt", Data: []byte("alpha knowledge")},
	})
	require.NoError(t, err)

	embedder.err = errors.New("embedding service down")
	_, err = svc.Upload(context.Background(), "s1", []ingest.File{
		{Name: "b.txt", Data: []byte("beta knowledge")},
	})
	require.Error(t, err)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindIndexBuild, appErr.Kind)

	// The failed upload must not have replaced anything.
	embedder.err = nil
	_, err = svc.Query(context.Background(), "s1", "what do you know?")
	require.NoError(t, err)
	finalPrompt := model.prompts[len(model.prompts)-1]
	assert.Contains(t, finalPrompt, "alpha knowledge")
	assert.NotContains(t, finalPrompt, "beta knowledge")
}
