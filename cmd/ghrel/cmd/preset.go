package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/xxxsen/ghrelease/github"
	"github.com/xxxsen/ghrelease/preset"
)

type presetArgs struct {
	name  string
	owner string
	repo  string
}

func NewPresetCmd(c *Context) *cobra.Command {
	ctx := context.Background()
	root := &cobra.Command{
		Use:   "preset",
		Short: "Manage saved repositories",
	}
	addArgs := &presetArgs{}
	add := &cobra.Command{
		Use:   "add <owner/repo|url>",
		Short: "Save a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, ok := github.ParseRepoURL(args[0])
			if !ok {
				return fmt.Errorf("invalid repository:%s", args[0])
			}
			p, err := c.Presets.Add(ctx, addArgs.name, owner, repo)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "preset added, id:%s\n", p.ID)
			return nil
		},
	}
	add.Flags().StringVarP(&addArgs.name, "name", "n", "", "display name, default owner/repo")
	root.AddCommand(add)

	root.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List saved repositories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ps, err := c.Presets.Load(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tREPO")
			for _, p := range ps {
				fmt.Fprintf(w, "%s\t%s\t%s/%s\n", p.ID, p.Name, p.Owner, p.Repo)
			}
			return w.Flush()
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a saved repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Presets.Delete(ctx, args[0])
		},
	})

	updArgs := &presetArgs{}
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a saved repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			upd := &preset.PresetUpdate{}
			if cmd.Flags().Changed("name") {
				upd.Name = &updArgs.name
			}
			if cmd.Flags().Changed("owner") {
				upd.Owner = &updArgs.owner
			}
			if cmd.Flags().Changed("repo") {
				upd.Repo = &updArgs.repo
			}
			_, err := c.Presets.Update(ctx, args[0], upd)
			return err
		},
	}
	update.Flags().StringVarP(&updArgs.name, "name", "n", "", "display name")
	update.Flags().StringVar(&updArgs.owner, "owner", "", "repository owner")
	update.Flags().StringVar(&updArgs.repo, "repo", "", "repository name")
	root.AddCommand(update)
	return root
}

func init() {
	register(NewPresetCmd)
}
