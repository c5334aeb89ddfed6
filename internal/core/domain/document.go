package domain

type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusError      DocumentStatus = "error"
)

// Document mirrors the backend's document record. ChunkCount is nil until
// processing has completed.
type Document struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	SizeBytes    int64          `json:"size_bytes"`
	ChunkCount   *int           `json:"chunk_count,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Status       DocumentStatus `json:"status"`
}

// Chattable reports whether the document may be used as a chat scope.
func (d Document) Chattable() bool {
	return d.Status == StatusReady
}

// ProcessOutcome is the backend's answer to a process request.
type ProcessOutcome struct {
	Document      Document `json:"document"`
	ChunksCreated int      `json:"chunks_created"`
}

// GuestDocument lives only in client memory. Its full content travels with
// every guest chat turn.
type GuestDocument struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	SizeBytes int64  `json:"size_bytes"`
}

// InlineDocument is the wire form of a guest document sent with a question.
type InlineDocument struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}
