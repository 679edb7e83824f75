//go:build mage

package main

// Crawl fetches a fresh snapshot of the review platform listing.
func Crawl() error {
	return runCLI("crawl")
}