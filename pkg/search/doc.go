// Package search orchestrates cached artifact searches over remote object
// locations: batched fetches through an object store session, gzip+JSON
// decoding, exact-match evaluation, and a TTL result cache keyed on the
// location set plus term. Per-location failures stream as events and never
// abort the search; only a failed session open does.
package search
