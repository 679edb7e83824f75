//go:build mage

package main

// Index rebuilds the search index from the merged dataset.
func Index() error {
	return runCLI("index", "build")
}

// Pipeline runs the full crawl, merge, generate, index sequence.
func Pipeline() error {
	for _, args := range [][]string{
		{"crawl"},
		{"merge"},
		{"generate"},
		{"index", "build"},
	} {
		if err := runCLI(args...); err != nil {
			return err
		}
	}
	return nil
}