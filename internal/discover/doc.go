// Package discover probes the dataset id space to find every dataset the
// remote repository serves.
package discover
