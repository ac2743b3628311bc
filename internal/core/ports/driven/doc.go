// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the page loader, the embedding provider,
// and the vector index backend.
package driven
