// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): tokenizer, embedding service, vector index,
// metadata store, build catalog, publisher, and LLM collaborator.
package driven
