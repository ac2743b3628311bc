// Package driving provides interfaces for the application's entry
// points (primary/inbound ports) used by the CLI and MCP adapters.
package driving
