package domain

import "time"

// DefaultCollection is the collection used when none is selected.
const DefaultCollection = "default"

// CollectionMetadata is the per-collection bookkeeping record.
// Counts and LastModified always move together: an ingestion batch that
// commits updates all three in one step.
type CollectionMetadata struct {
	// Name is the unique collection key.
	Name string `json:"name"`

	// CreatedAt is set once, at first creation, and never changes.
	CreatedAt time.Time `json:"created_at"`

	// LastModified is updated on every mutation.
	LastModified time.Time `json:"last_modified"`

	// DocumentCount is the number of source documents ingested.
	DocumentCount int `json:"document_count"`

	// TotalChunks is the number of chunks produced from those documents.
	TotalChunks int `json:"total_chunks"`

	// Description is free-form text describing the collection.
	Description string `json:"description"`
}

// RecordIngestion applies a committed ingestion batch to the metadata:
// both counters and the modification time move atomically.
func (m *CollectionMetadata) RecordIngestion(documents, chunks int, now time.Time) {
	m.DocumentCount += documents
	m.TotalChunks += chunks
	m.LastModified = now
}

// NewCollectionMetadata creates metadata for a brand new collection.
func NewCollectionMetadata(name string, now time.Time) CollectionMetadata {
	return CollectionMetadata{
		Name:         name,
		CreatedAt:    now,
		LastModified: now,
	}
}
