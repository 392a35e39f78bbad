package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/live-labs/keyguard/internal/filestore"
	"github.com/live-labs/keyguard/internal/prompt"
	"github.com/live-labs/keyguard/pkg/vault"
)

// Options are the vault-selection flags shared by every command.
type Options struct {
	Service      string
	Group        string
	Access       string
	DB           string
	AlwaysPrompt bool
}

// HandleError prints an error and exits
func HandleError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(1)
}

// authenticator supplies the file-store passphrase: environment first,
// interactive no-echo prompt second. EOF on the prompt becomes a
// cancellation.
func authenticator() filestore.Authenticator {
	return func(reason string) ([]byte, error) {
		if passphrase := prompt.FromEnv(); passphrase != nil {
			return passphrase, nil
		}
		passphrase, err := prompt.ReadPassphrase(reason)
		if errors.Is(err, io.EOF) {
			return nil, filestore.ErrCancelled
		}
		return passphrase, err
	}
}

// OpenVault obtains the vault described by opts. The returned release
// func closes the file store when one was opened; call it when done.
func OpenVault(opts Options) (*vault.Vault, func(), error) {
	release := func() {}
	if opts.DB != "" {
		store, err := filestore.Open(opts.DB, authenticator())
		if err != nil {
			return nil, nil, err
		}
		vault.SetDefaultPlatform(store)
		release = func() { store.Close() }
	}

	access := vault.AccessControlUserPresence
	if opts.Access != "" {
		access = vault.AccessControl(opts.Access)
	}
	flavor := vault.SinglePrompt(access)
	if opts.AlwaysPrompt {
		flavor = vault.AlwaysPrompt(access)
	}

	var (
		v   *vault.Vault
		err error
	)
	if opts.Group != "" {
		v, err = vault.ObtainShared(opts.Service, opts.Group, flavor)
	} else {
		v, err = vault.Obtain(opts.Service, flavor)
	}
	if err != nil {
		release()
		return nil, nil, err
	}
	return v, release, nil
}
