// Package fetch performs catalog HTTP GETs with bounded redirect following.
//
// The standard client's automatic redirect handling is disabled; 301
// responses are followed here so the hop count is explicit and exceeding it is
// a distinct, fatal error. 200 and 404 are returned to the caller, every other
// status becomes a *StatusError.
package fetch
