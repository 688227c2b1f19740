package dto

// QueryRequest is the body of POST /api/chat/v1/query.
type QueryRequest struct {
	Query string `json:"query" validate:"required,min=1"`
}

type QueryResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

type UploadResponse struct {
	SessionID     string `json:"session_id"`
	FilesIngested int    `json:"files_ingested"`
	ChunksIndexed int    `json:"chunks_indexed"`
}

type HealthResponse struct {
	ActiveSessions  int   `json:"active_sessions"`
	UploadsIndexed  int64 `json:"uploads_indexed"`
	SessionsEvicted int64 `json:"sessions_evicted"`
}
