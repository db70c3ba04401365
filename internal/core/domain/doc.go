// Package domain contains the core business entities: chunks, indexed
// records, sessions and settings. These are pure domain objects with no
// knowledge of providers or storage.
package domain
