// Package tvmaze resolves TVMaze show identifiers into immutable Show
// snapshots carrying series attributes and the full ordered episode list.
//
// Lookups accept native TVMaze ids or IMDb ids (tt-prefixed), validate ids
// without loading episodes, and translate IMDb ids to native ids. A 404 from
// the catalog surfaces as ErrInvalidID so callers can tell a bad identifier
// from a connectivity failure. Responses may be kept in an optional Cache.
package tvmaze
