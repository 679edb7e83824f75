//go:build mage

package main

// Merge folds all raw snapshots into the merged dataset.
func Merge() error {
	return runCLI("merge")
}