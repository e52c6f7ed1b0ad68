// Package collections registers the watchlist, list and playlist
// definitions with the core registry.
// Import this package to ensure all collections are registered.
package collections

// Each collection file uses init() to register its definition.
