// Package tmdb provides the minimal TMDB API client used to resolve
// imported rows.
//
// It exposes the IMDb id lookup (/find) and movie/TV detail retrieval, and
// adapts both to the import engine's Catalog interface. Every request is
// paced by an optional token bucket shared by all imports, and failures are
// classified into sentinel errors (not found, unauthorized, rate limited,
// server error) so row messages stay readable. Options allow tests to supply
// custom HTTP clients without modifying production code.
package tmdb
