// Package driven defines the outbound ports of the retrieval core:
// embedding and generation providers, the vector index, the record store
// and configuration storage. Adapters under internal/adapters/driven
// implement them.
package driven
