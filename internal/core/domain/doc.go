// Package domain contains the core business entities for Forage:
// crawled documents, chunks, collection metadata, and search results.
// It has no dependencies on adapters or infrastructure.
package domain
