package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func maskToken(t string) string {
	if len(t) <= 8 {
		if len(t) == 0 {
			return "-"
		}
		return "****"
	}
	return t[:4] + "****" + t[len(t)-4:]
}

func NewSettingsCmd(c *Context) *cobra.Command {
	ctx := context.Background()
	root := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences",
	}
	root.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print current settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := c.Settings.Load(ctx)
			if err != nil {
				return err
			}
			mirror, err := c.Settings.MirrorURL(ctx)
			if err != nil {
				return err
			}
			if len(mirror) == 0 {
				mirror = "-"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mirror: %s\n", mirror)
			fmt.Fprintf(out, "theme:  %s\n", st.Theme)
			fmt.Fprintf(out, "token:  %s\n", maskToken(st.AccessToken))
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "mirror [url]",
		Short: "Set the download mirror, empty to clear it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u string
			if len(args) > 0 {
				u = args[0]
			}
			return c.Settings.SetMirrorURL(ctx, u)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "token [token]",
		Short: "Set the GitHub access token, empty to clear it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var t string
			if len(args) > 0 {
				t = args[0]
			}
			return c.Settings.SetAccessToken(ctx, t)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:       "theme <blue|pink>",
		Short:     "Set the theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"blue", "pink"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Settings.SetTheme(ctx, args[0])
		},
	})
	return root
}

func init() {
	register(NewSettingsCmd)
}
