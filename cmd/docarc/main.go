// Package main provides the entry point for the docarc CLI.
//
// docarc is a resumable archiver for paginated public document
// repositories. It discovers datasets, extracts document links from their
// listing pages, and downloads each file exactly once with verification.
//
// Usage:
//
//	docarc discover-all
//	docarc stats
//
// See --help for all available options.
package main

// main is the entry point for docarc.
func main() {
	Execute()
}
