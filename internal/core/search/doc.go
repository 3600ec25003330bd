// Package search implements the ranking algorithms used to score a library's
// embedded chunks against a query.
//
// Every algorithm validates its input the same way, scores each chunk
// independently, then sorts by descending score with a stable sort so that
// equal scores keep their input order. Ranks are dense and start at 1.
//
// Algorithms are immutable once constructed and safe for concurrent use.
// Tunables such as hybrid weights are constructor parameters.
package search
