// Package documents implements the server's document operations as
// validated request handlers over a revisioned repository.
package documents

// CreateRequest asks for a new document under a fresh logical key.
type CreateRequest struct {
	Key   string   `json:"key"`
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags,omitempty"`
}

// UpdateRequest stores a new revision of an existing document.
type UpdateRequest struct {
	Key   string   `json:"key"`
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags,omitempty"`
}

// GetRequest fetches the current active revision of a document.
type GetRequest struct {
	Key string `json:"key"`
}

// DeleteRequest soft-deletes the current active revision of a document.
type DeleteRequest struct {
	Key string `json:"key"`
}

// HistoryRequest lists every stored revision of a document, newest first.
type HistoryRequest struct {
	Key string `json:"key"`
}
