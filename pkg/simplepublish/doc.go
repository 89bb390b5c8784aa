// Package simplepublish implements the content publication and
// external-asset lifecycle shared by every publishable collection of the
// admin API: slug derivation with collection-wide uniqueness, offloading of
// large bodies to an external blob store with safe replace ordering, the
// per-kind status state machine gated by caller role, and role-aware list
// planning with pagination.
//
// The Service is assembled from an injected Repository (persistence) and a
// ContentStore over a BlobStore backend (external storage), following the
// functional-option construction pattern:
//
//	svc, err := simplepublish.New(
//	    simplepublish.WithRepository(repo),
//	    simplepublish.WithContentStore(cs),
//	    simplepublish.WithEventSink(sink),
//	)
//
// There is deliberately no cross-system transaction between the blob store
// and the database. On content replacement the order is upload new, persist
// new locator, delete old; a database failure after a successful upload
// leaves an orphaned blob, which is logged and tolerated. Concurrent updates
// to the same entity race with last-write-wins semantics.
package simplepublish
