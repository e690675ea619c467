package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func NewWebdavCmd(c *Context) *cobra.Command {
	ctx := context.Background()
	root := &cobra.Command{
		Use:   "webdav",
		Short: "Inspect the configured webdav storage",
	}
	root.AddCommand(&cobra.Command{
		Use:   "test",
		Short: "Check that the webdav server is reachable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dav, err := c.requireDav()
			if err != nil {
				return err
			}
			if !dav.TestConnection(ctx) {
				return fmt.Errorf("connect webdav server failed, base_url:%s", c.Config.Webdav.BaseURL)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "connection ok")
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List backup files under the remote path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs, err := c.Backup.ListRemote(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSIZE\tMODIFIED")
			for _, f := range fs {
				mtime := f.LastModified
				if t, err := f.ModTime(); err == nil {
					mtime = humanize.Time(t)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, humanize.IBytes(uint64(f.Size)), mtime)
			}
			return w.Flush()
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a remote directory and its parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dav, err := c.requireDav()
			if err != nil {
				return err
			}
			return dav.CreateDirectory(ctx, args[0])
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "exists <name>",
		Short: "Check whether a file exists under the remote path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dav, err := c.requireDav()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dav.FileExists(ctx, args[0]))
			return nil
		},
	})
	return root
}

func init() {
	register(NewWebdavCmd)
}
