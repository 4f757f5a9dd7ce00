// Package store provides the relational storage the compiled queries run
// against.
//
// The schema holds documents with their privileged metadata columns and an
// open attribute table, corpora and their document membership, and spans
// (tokens and structures) with an open attribute table:
//
//   - document, document_attribute
//   - corpus, document_corpus
//   - span, span_attribute
//
// # Backends
//
// SQLite databases are opened through the driver registered as DriverName,
// which installs on every connection the SQL functions compiled queries call:
// the span distance functions (pyt_is_near_within, ...), pyt_is_numeric,
// pyt_similarity and REGEXP.
//
// PostgreSQL databases are opened with lib/pq. Their tables and functions are
// installed once by running PostgresSchema, which needs the pg_trgm extension.
package store
