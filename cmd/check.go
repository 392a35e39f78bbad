package cmd

import (
	"fmt"
	"os"
)

// Check probes store reachability without triggering an authentication
// prompt. Exits 1 when the store is unreachable.
func Check(opts Options) {
	v, release, err := OpenVault(opts)
	if err != nil {
		HandleError(err)
	}
	defer release()

	if !v.CanAccessKeychain() {
		fmt.Println("Store is not reachable")
		os.Exit(1)
	}
	fmt.Println("Store is reachable")
}
