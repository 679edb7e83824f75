//go:build mage

package main

// Generate writes the static site documents from the merged dataset.
func Generate() error {
	return runCLI("generate")
}