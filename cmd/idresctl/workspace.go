package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"idres/internal/workspace"
)

func (a *app) workspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workspace",
		Short:   "Segment and Twilio settings in the .env file",
		GroupID: "workspace",
	}

	var reveal bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the workspace settings with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			s, err := workspace.NewEnvStore(a.cfg.EnvFile).Load()
			if err != nil {
				return err
			}
			if !reveal {
				s = s.Redacted()
			}
			return a.printSettings(s)
		},
	}
	show.Flags().BoolVar(&reveal, "reveal", false, "print secrets in clear text")
	cmd.AddCommand(show)

	cmd.AddCommand(a.workspaceSetCmd())

	cmd.AddCommand(&cobra.Command{
		Use:   "links",
		Short: "Print the Segment app links for the configured space",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			s, err := workspace.NewEnvStore(a.cfg.EnvFile).Load()
			if err != nil {
				return err
			}
			links := s.Links()
			if links == (workspace.Links{}) {
				return fmt.Errorf("%s and %s must be set to build links", workspace.KeyWorkspaceSlug, workspace.KeySpaceSlug)
			}
			return a.render(links, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "identity resolution\t%s\n", links.IdentityResolution)
				fmt.Fprintf(w, "profile explorer\t%s\n", links.ProfileExplorer)
			})
		},
	})
	return cmd
}

func (a *app) workspaceSetCmd() *cobra.Command {
	var (
		spaceID, accessToken, workspaceSlug, spaceSlug string
		twilioSID, twilioToken, twilioFrom             string
		twilioEnabled, exportEnabled                   bool
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update workspace settings; only the given flags change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			var u workspace.Update
			if flags.Changed("space-id") {
				u.SpaceID = &spaceID
			}
			if flags.Changed("access-token") {
				u.AccessToken = &accessToken
			}
			if flags.Changed("workspace-slug") {
				u.WorkspaceSlug = &workspaceSlug
			}
			if flags.Changed("space-slug") {
				u.SpaceSlug = &spaceSlug
			}
			if flags.Changed("twilio-enabled") {
				u.TwilioEnabled = &twilioEnabled
			}
			if flags.Changed("export-enabled") {
				u.ExportEnabled = &exportEnabled
			}
			if flags.Changed("twilio-account-sid") {
				u.TwilioAccountSID = &twilioSID
			}
			if flags.Changed("twilio-auth-token") {
				u.TwilioAuthToken = &twilioToken
			}
			if flags.Changed("twilio-from") {
				u.TwilioFromNumber = &twilioFrom
			}

			envStore := workspace.NewEnvStore(a.cfg.EnvFile)
			current, err := envStore.Load()
			if err != nil {
				return err
			}
			next := u.Apply(current)
			if err := envStore.Save(next); err != nil {
				return err
			}
			if changed := workspace.ChangedKeys(current, next); len(changed) > 0 {
				a.logger.Info("workspace settings updated", "path", envStore.Path(), "keys", changed)
			}
			return a.printSettings(next.Redacted())
		},
	}
	f := cmd.Flags()
	f.StringVar(&spaceID, "space-id", "", "Segment Unify space id")
	f.StringVar(&accessToken, "access-token", "", "Profile API access token")
	f.StringVar(&workspaceSlug, "workspace-slug", "", "Segment workspace slug")
	f.StringVar(&spaceSlug, "space-slug", "", "Segment Unify space slug")
	f.BoolVar(&twilioEnabled, "twilio-enabled", false, "enable Twilio notifications")
	f.BoolVar(&exportEnabled, "export-enabled", false, "enable profile exports")
	f.StringVar(&twilioSID, "twilio-account-sid", "", "Twilio account SID")
	f.StringVar(&twilioToken, "twilio-auth-token", "", "Twilio auth token")
	f.StringVar(&twilioFrom, "twilio-from", "", "Twilio sender number")
	return cmd
}

func (a *app) printSettings(s workspace.Settings) error {
	return a.render(s, func(w *tabwriter.Writer) {
		env := s.ToEnv()
		for _, k := range workspace.ManagedKeys {
			fmt.Fprintf(w, "%s\t%s\n", k, env[k])
		}
	})
}
