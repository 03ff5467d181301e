package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mhsenam/rentmio/internal/client"
	"github.com/mhsenam/rentmio/internal/session"
)

// openSession builds an API client from the persistent flags and restores
// the session left by a previous login, if any.
func openSession(cmd *cobra.Command) (*client.Client, *session.Store, error) {
	apiURL, _ := cmd.Flags().GetString("api-url")
	sessionFile, _ := cmd.Flags().GetString("session-file")

	api, err := client.New(apiURL)
	if err != nil {
		return nil, nil, err
	}
	store := session.NewStore(api, sessionFile)
	if err := store.Load(); err != nil {
		return nil, nil, err
	}
	return api, store, nil
}

// requireSignedIn resolves the restored session and fails unless it is
// authenticated.
func requireSignedIn(cmd *cobra.Command, store *session.Store) error {
	if err := store.Resolve(cmd.Context()); err != nil {
		return err
	}
	if snap := store.Snapshot(); snap.State != session.Authenticated {
		return fmt.Errorf("%w: run `rentmio login` first", session.ErrNotSignedIn)
	}
	return nil
}
