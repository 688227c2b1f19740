package service

import (
	"context"
	"strings"
	"time"

	"doc-chat-be/internal/dto"
	"doc-chat-be/internal/pkg/apperror"
	"doc-chat-be/internal/pkg/logger"
	"doc-chat-be/internal/repository/memory"
	"doc-chat-be/pkg/embedding"
	"doc-chat-be/pkg/events"
	"doc-chat-be/pkg/ingest"
	"doc-chat-be/pkg/llm"
	"doc-chat-be/pkg/rag/prompt"
	"doc-chat-be/pkg/store"
	"doc-chat-be/pkg/vectorindex"
)

// IChatService defines the chat service interface
type IChatService interface {
	Upload(ctx context.Context, sessionID string, files []ingest.File) (*dto.UploadResponse, error)
	Query(ctx context.Context, sessionID string, query string) (*dto.QueryResponse, error)
}

// chatService orchestrates the retrieve-or-fallback answering protocol and
// the upload → index → replace flow.
type chatService struct {
	sessionRepo       *memory.SessionRepository
	ingestor          *ingest.Ingestor
	embeddingProvider embedding.EmbeddingProvider
	llmProvider       llm.LLMProvider
	publisher         *events.Publisher
	log               logger.ILogger
	topK              int
}

func NewChatService(
	sessionRepo *memory.SessionRepository,
	ingestor *ingest.Ingestor,
	embeddingProvider embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	publisher *events.Publisher,
	log logger.ILogger,
	topK int,
) IChatService {
	return &chatService{
		sessionRepo:       sessionRepo,
		ingestor:          ingestor,
		embeddingProvider: embeddingProvider,
		llmProvider:       llmProvider,
		publisher:         publisher,
		log:               log,
		topK:              topK,
	}
}

// Upload ingests the files, builds a fresh index and installs it for the
// session, replacing any prior index wholesale. Conversation memory is kept.
// On any failure the session's previous state is left untouched.
func (cs *chatService) Upload(ctx context.Context, sessionID string, files []ingest.File) (*dto.UploadResponse, error) {
	chunks, err := cs.ingestor.Ingest(files)
	if err != nil {
		return nil, apperror.Ingestion("A document could not be read, nothing was ingested", err)
	}
	if len(chunks) == 0 {
		return nil, apperror.Ingestion("No supported documents were found in the upload, nothing was ingested", nil)
	}

	index, err := vectorindex.Build(ctx, cs.embeddingProvider, chunks)
	if err != nil {
		return nil, apperror.IndexBuild("The document indexing service failed", err)
	}

	cs.sessionRepo.ReplaceIndex(sessionID, index)

	cs.log.Info("chat", "Knowledge base replaced", map[string]interface{}{
		"session_id": sessionID,
		"files":      len(files),
		"chunks":     len(chunks),
	})
	if err := cs.publisher.Publish(events.NewSessionIndexed(sessionID, len(files), len(chunks))); err != nil {
		cs.log.Warn("chat", "Failed to publish session indexed event", map[string]interface{}{"error": err.Error()})
	}

	return &dto.UploadResponse{
		SessionID:     sessionID,
		FilesIngested: len(files),
		ChunksIndexed: len(chunks),
	}, nil
}

// Query answers a question for the session. An index-less session takes the
// fallback path; a session with an index takes the retrieval path. The turn
// is committed to memory only after the model call succeeds, so an aborted
// request leaves no partial state behind.
func (cs *chatService) Query(ctx context.Context, sessionID string, query string) (*dto.QueryResponse, error) {
	session := cs.sessionRepo.Touch(sessionID)

	session.Mu.Lock()
	index := session.Index
	history := session.HistorySnapshot()
	session.Mu.Unlock()

	if index == nil {
		return cs.answerFallback(ctx, sessionID, query)
	}
	return cs.answerWithRetrieval(ctx, session, index, history, query)
}

func (cs *chatService) answerFallback(ctx context.Context, sessionID string, query string) (*dto.QueryResponse, error) {
	answer, err := cs.llmProvider.Generate(ctx, prompt.FallbackInstruction+query)
	if err != nil {
		return nil, apperror.ModelInvocation("The answering service failed", err)
	}

	cs.log.Info("chat", "Fallback answer served", map[string]interface{}{"session_id": sessionID})
	return &dto.QueryResponse{
		SessionID: sessionID,
		Answer:    answer,
	}, nil
}

func (cs *chatService) answerWithRetrieval(
	ctx context.Context,
	session *store.Session,
	index store.Retriever,
	history []store.Turn,
	query string,
) (*dto.QueryResponse, error) {
	// 1. Condense the follow-up into a standalone question. The first question
	// of a conversation is already standalone.
	standalone := query
	if len(history) > 0 {
		condensed, err := cs.llmProvider.Generate(ctx, prompt.NewCondenseBuilder(history, query).Build())
		if err != nil {
			return nil, apperror.ModelInvocation("The answering service failed", err)
		}
		if trimmed := strings.TrimSpace(condensed); trimmed != "" {
			standalone = trimmed
		}
	}

	// 2. Retrieve. Zero chunks still proceeds with an empty context block;
	// an index-bearing session never silently switches to the fallback path.
	chunks, err := index.Query(ctx, standalone, cs.topK)
	if err != nil {
		return nil, apperror.IndexBuild("The retrieval service failed", err)
	}

	// 3. Answer from context.
	answer, err := cs.llmProvider.Generate(ctx, prompt.NewAnswerBuilder(chunks, history, query).Build())
	if err != nil {
		return nil, apperror.ModelInvocation("The answering service failed", err)
	}

	// 4. Commit the turn, only now that the model call has returned.
	session.Mu.Lock()
	session.Memory = append(session.Memory, store.Turn{Question: query, Answer: answer})
	session.Touch(time.Now())
	session.Mu.Unlock()

	cs.log.Info("chat", "Retrieval answer served", map[string]interface{}{
		"session_id": session.ID,
		"retrieved":  len(chunks),
	})
	return &dto.QueryResponse{
		SessionID: session.ID,
		Answer:    answer,
	}, nil
}
