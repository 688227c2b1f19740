package store

import (
	"context"
	"sync"
	"time"
)

// Chunk is a bounded span of extracted document text used as a retrieval unit.
// Immutable once produced by ingestion.
type Chunk struct {
	Content  string  `json:"content"`
	Source   string  `json:"source"` // original filename
	Sequence int     `json:"sequence"`
	Score    float32 `json:"score,omitempty"`
}

// Turn is a single (question, answer) exchange. Appended to a session's
// memory after a successful model call, never mutated afterwards.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Retriever is the queryable knowledge base handle a session holds once
// documents have been uploaded. Built once, replaced wholesale on re-upload.
type Retriever interface {
	Query(ctx context.Context, text string, topK int) ([]Chunk, error)
	Size() int
}

// Session is the active per-user state in memory.
//
// The mutex guards Index, Memory and LastActivity. It must be held only for
// short read/write sections, never across an embedding or completion call.
type Session struct {
	Mu sync.Mutex

	ID           string
	Index        Retriever // nil until the first successful upload
	Memory       []Turn
	LastActivity time.Time
}

// Touch moves LastActivity forward. It never moves the clock backwards, so
// concurrent touches settle to the maximum observed timestamp.
// Caller must hold Mu.
func (s *Session) Touch(now time.Time) {
	if now.After(s.LastActivity) {
		s.LastActivity = now
	}
}

// HasIndex reports whether the session answers through the retrieval path.
// Caller must hold Mu.
func (s *Session) HasIndex() bool {
	return s.Index != nil
}

// HistorySnapshot copies the conversation memory so prompt construction can
// happen after the lock is released.
// Caller must hold Mu.
func (s *Session) HistorySnapshot() []Turn {
	history := make([]Turn, len(s.Memory))
	copy(history, s.Memory)
	return history
}
