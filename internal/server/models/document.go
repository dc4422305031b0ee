// Package models holds the server's stored entity types.
package models

import (
	"slices"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/revkeeper/internal/entity"
)

// Document is the demo entity served by this server. The embedded Record
// carries the revision bookkeeping; everything else is payload.
type Document struct {
	entity.Record
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags,omitempty"`
}

// NewDocument returns the first revision of a document with the given key.
func NewDocument(key uuid.UUID, title, body string, tags []string) *Document {
	return &Document{
		Record: entity.NewRecord(key),
		Title:  title,
		Body:   body,
		Tags:   tags,
	}
}

// CloneDocument deep-copies d, for store backends that must not share
// memory with callers.
func CloneDocument(d *Document) *Document {
	c := *d
	c.Tags = slices.Clone(d.Tags)
	return &c
}
