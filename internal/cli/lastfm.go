package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/llehouerou/waved/internal/config"
	"github.com/llehouerou/waved/internal/core"
	"github.com/llehouerou/waved/internal/lastfm"
)

var errNoAPIKey = errors.New("lastfm.api_key and lastfm.api_secret must be set")

func newLastfmAuthCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "lastfm-auth",
		Short: "Authorize scrobbling to a Last.fm account",
		Long: `Requests a Last.fm session for the API account configured in
lastfm.api_key and lastfm.api_secret and stores it in lastfm.session_key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := core.ConfigPath(f.options(nil))
			cfg := config.New(zerolog.Nop(), config.Defaults())
			if _, err := os.Stat(path); err == nil {
				if err := cfg.Load(path); err != nil {
					return err
				}
			}

			key, secret := cfg.String(config.KeyLastfmAPIKey), cfg.String(config.KeyLastfmAPISecret)
			if key == "" || secret == "" {
				return fmt.Errorf("%w in %s", errNoAPIKey, path)
			}

			client := lastfm.NewClient(key, secret)
			token, err := client.GetToken()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Open this page and allow access:\n\n  %s\n\nThen press Enter.\n", client.AuthURL(token))
			if _, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n'); err != nil {
				return fmt.Errorf("read confirmation: %w", err)
			}

			session, err := client.GetSession(token)
			if err != nil {
				return err
			}
			if err := cfg.Set(config.KeyLastfmSessionKey, session); err != nil {
				return err
			}
			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(out, "Scrobbling enabled, session saved to %s\n", path)
			return nil
		},
	}
}
