// Package services implements the application core: the session-scoped
// retriever that owns the vector index and record store, and the chat
// service that turns retrieval hits into generated answers.
package services
