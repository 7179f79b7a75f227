// Package walker enumerates the paginated listing pages of a dataset
// and records the document links found on them.
package walker
