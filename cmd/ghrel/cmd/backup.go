package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type backupCreateArgs struct {
	name string
	desc string
}

func NewBackupCmd(c *Context) *cobra.Command {
	ctx := context.Background()
	root := &cobra.Command{
		Use:   "backup",
		Short: "Backup and restore settings and presets",
	}

	createArgs := &backupCreateArgs{}
	create := &cobra.Command{
		Use:   "create",
		Short: "Snapshot current settings and presets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := c.Backup.Create(ctx, createArgs.name, createArgs.desc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backup created, id:%s\n", rec.ID)
			return nil
		},
	}
	create.Flags().StringVarP(&createArgs.name, "name", "n", "", "backup name")
	create.Flags().StringVarP(&createArgs.desc, "desc", "d", "", "backup description")
	root.AddCommand(create)

	root.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List local backups, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rs, err := c.Backup.List(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPRESETS\tCREATED\tDESCRIPTION")
			for _, rec := range rs {
				m := rec.Metadata
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", rec.ID, m.Name, m.PresetsCount,
					humanize.Time(time.UnixMilli(m.Timestamp)), m.Description)
			}
			return w.Flush()
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a local backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Backup.Delete(ctx, args[0])
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "restore <id>",
		Short: "Restore settings and presets from a local backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Backup.Restore(ctx, args[0])
		},
	})

	var exportDir string
	export := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a local backup as a json file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dst, err := c.Backup.ExportToFile(ctx, args[0], exportDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dst)
			return nil
		},
	}
	export.Flags().StringVarP(&exportDir, "dir", "o", ".", "output directory")
	root.AddCommand(export)

	root.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Import an exported backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open import file failed, err:%w", err)
			}
			defer f.Close()
			rec, err := c.Backup.Import(ctx, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backup imported, id:%s\n", rec.ID)
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all local backups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.Backup.Clear(ctx)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "push",
		Short: "Upload current settings and presets to webdav",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			name, err := c.Backup.PushRemote(ctx)
			if err != nil {
				return err
			}
			logutil.GetLogger(ctx).Info("push backup succ", zap.String("name", name), zap.Duration("cost", time.Since(start)))
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "remote-ls",
		Short: "List remote backups, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs, err := c.Backup.ListRemote(ctx)
			if err != nil {
				return err
			}
			for _, f := range fs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", f.Name, humanize.IBytes(uint64(f.Size)))
			}
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "pull <name>",
		Short: "Download a remote backup and keep it locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := c.Backup.PullRemote(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backup pulled, id:%s\n", rec.ID)
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "remote-restore <name>",
		Short: "Restore settings and presets from a remote backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Backup.RestoreRemote(ctx, args[0])
		},
	})
	return root
}

func init() {
	register(NewBackupCmd)
}
