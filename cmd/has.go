package cmd

import (
	"fmt"
	"os"
)

// Has reports whether an item exists under key. Exits 1 when absent.
func Has(opts Options, key string) {
	v, release, err := OpenVault(opts)
	if err != nil {
		HandleError(err)
	}
	defer release()

	if !v.Contains(key) {
		fmt.Printf("%q not found\n", key)
		os.Exit(1)
	}
	fmt.Printf("%q present\n", key)
}
