// Package searcher plans semantic queries over the snippet store.
//
// It owns the query-side contract: argument validation, the default limit
// and similarity threshold, and turning query text into a vector through
// the configured embedder. Ranking itself happens in the store, which
// orders by cosine similarity of the combined embedding and breaks ties by
// most-recent update, then lowest id.
package searcher
