// Package resolver maps track descriptors to catalog identifiers.
//
// Two strategies cover the two kinds of catalogs:
//
//   - [Index] matches against a catalog whose full track listing is already in
//     memory, using normalized titles and fuzzy similarity scoring.
//   - [SearchResolver] matches against a catalog reachable only through a
//     search endpoint, issuing progressively simplified queries and accepting
//     the first hit.
//
// Both record provenance so reports can show how each match was found. The
// similarity thresholds were tuned against real libraries; they are exported
// so callers can override them, but parity matters more than cleverness here.
package resolver
