package cmd

import "os"

// Get prints the value stored under key to stdout. reason, if set, is
// shown on the authentication prompt.
func Get(opts Options, key, reason string) {
	v, release, err := OpenVault(opts)
	if err != nil {
		HandleError(err)
	}
	defer release()

	data, err := v.GetWithPrompt(key, reason)
	if err != nil {
		HandleError(err)
	}
	os.Stdout.Write(data)
}
