package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mhsenam/rentmio/internal/session"
)

func LoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in (or sign up) and remember the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			googleToken, _ := cmd.Flags().GetString("google-id-token")
			signUp, _ := cmd.Flags().GetBool("signup")
			name, _ := cmd.Flags().GetString("name")
			if password == "" {
				password = os.Getenv("RENTMIO_PASSWORD")
			}

			_, store, err := openSession(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			switch {
			case googleToken != "":
				err = store.SignInWithGoogle(ctx, googleToken)
			case email == "" || password == "":
				return errors.New("--email and --password (or RENTMIO_PASSWORD) are required")
			case signUp:
				err = store.SignUp(ctx, email, password, name)
			default:
				err = store.SignIn(ctx, email, password)
			}
			if err != nil {
				return err
			}

			snap := store.Snapshot()
			if snap.State != session.Authenticated {
				return fmt.Errorf("sign-in did not produce a session (state %s)", snap.State)
			}
			who := snap.UserID
			if snap.Profile != nil && snap.Profile.DisplayName != "" {
				who = snap.Profile.DisplayName
			}
			fmt.Printf("Signed in as %s\n", who)
			if snap.Err != "" {
				fmt.Fprintf(os.Stderr, "warning: %s\n", snap.Err)
			}
			return nil
		},
	}
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password")
	cmd.Flags().String("google-id-token", "", "Sign in with a Google ID token instead")
	cmd.Flags().Bool("signup", false, "Create the account first")
	cmd.Flags().String("name", "", "Display name for --signup")
	return cmd
}

func LogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, store, err := openSession(cmd)
			if err != nil {
				return err
			}
			if err := store.SignOut(cmd.Context()); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
			fmt.Println("Signed out")
			return nil
		},
	}
}
