package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

var (
	loginToken        string
	loginRefreshToken string
	loginExpiresIn    time.Duration
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a session token for pushing changes",
	Long: `Without flags, login runs the OAuth2 device code flow (requires api.token_url
and api.device_auth_url in the config). With --token an existing access token
is stored as is.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := tokenStore().Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Access token to store")
	loginCmd.Flags().StringVar(&loginRefreshToken, "refresh-token", "", "Refresh token (enables renewal when api.token_url is set)")
	loginCmd.Flags().DurationVar(&loginExpiresIn, "expires-in", 0, "Lifetime of --token, e.g. 1h (default: no expiry)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	store := tokenStore()
	out := cmd.OutOrStdout()

	if loginToken == "" {
		if _, err := store.DeviceLogin(context.Background(), oauthConfig(), out); err != nil {
			return err
		}
		fmt.Fprintln(out, "Logged in.")
		return nil
	}

	tok := &oauth2.Token{AccessToken: loginToken, TokenType: "Bearer", RefreshToken: loginRefreshToken}
	if loginExpiresIn > 0 {
		tok.Expiry = time.Now().Add(loginExpiresIn)
	}
	if err := store.Save(tok); err != nil {
		return err
	}
	fmt.Fprintf(out, "Token saved to %s.\n", store.Path())
	return nil
}
