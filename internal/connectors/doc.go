// Package connectors holds the document sources that feed the store.
// The filesystem connector ingests local files; web pages arrive via
// the crawler instead.
package connectors
