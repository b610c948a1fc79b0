// Package models defines domain entities and persistence interfaces for the playlist synchronization service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs passed between the engine, resolvers, and catalog clients
//   - [Playlist] : A named, ordered track collection with per-catalog identifiers
//   - [Track] : Catalog-independent track descriptor with resolved references and provenance
//   - [Provenance] : How a reference was obtained (reused, search level, or miss)
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [CrossRef] : Cached track references keyed by normalized track key
//   - [PlaylistRef] : Cached playlist identifiers keyed by sanitized name
//
// All persistent entities implement the Model interface providing ID generation, timestamps, and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
