package cmd

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/ghrelease/github"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// parseRepoArg accepts owner/repo, a github url or a share link like /?owner=o&repo=r.
func parseRepoArg(in string) (string, string, error) {
	if u, err := url.Parse(in); err == nil && len(u.RawQuery) > 0 {
		if owner, repo, ok := github.OwnerRepoFromQuery(u.Query()); ok {
			return owner, repo, nil
		}
	}
	owner, repo, ok := github.ParseRepoURL(in)
	if !ok {
		return "", "", fmt.Errorf("invalid repository:%s, want owner/repo or github url", in)
	}
	return owner, repo, nil
}

func humanTime(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return humanize.Time(t)
}

func releaseFlags(r *github.Release) string {
	fs := make([]string, 0, 2)
	if r.Draft {
		fs = append(fs, "draft")
	}
	if r.Prerelease {
		fs = append(fs, "pre")
	}
	return strings.Join(fs, ",")
}

func NewReleaseCmd(c *Context) *cobra.Command {
	ctx := context.Background()
	root := &cobra.Command{
		Use:   "release",
		Short: "Browse repository releases",
	}

	var perPage int
	ls := &cobra.Command{
		Use:   "ls <owner/repo|url>",
		Short: "List releases of a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := parseRepoArg(args[0])
			if err != nil {
				return err
			}
			rs, err := c.Github.GetReleases(ctx, owner, repo, perPage)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TAG\tNAME\tFLAGS\tASSETS\tPUBLISHED")
			for _, r := range rs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", r.TagName, r.DisplayName(), releaseFlags(r), len(r.Assets), humanTime(r.PublishedAt))
			}
			return w.Flush()
		},
	}
	ls.Flags().IntVarP(&perPage, "per-page", "p", 0, "releases per page, default from config")
	root.AddCommand(ls)

	root.AddCommand(&cobra.Command{
		Use:   "latest",
		Short: "Show the latest release of every saved repository",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ps, err := c.Presets.Load(ctx)
			if err != nil {
				return err
			}
			latest := make([]*github.Release, len(ps))
			errs := make([]error, len(ps))
			eg, subctx := errgroup.WithContext(ctx)
			eg.SetLimit(c.Config.Thread)
			for i, p := range ps {
				eg.Go(func() error {
					rs, err := c.Github.GetReleases(subctx, p.Owner, p.Repo, 1)
					if err != nil {
						logutil.GetLogger(ctx).Error("get releases failed", zap.Error(err), zap.String("owner", p.Owner), zap.String("repo", p.Repo))
						errs[i] = err
						return nil
					}
					if len(rs) > 0 {
						latest[i] = rs[0]
					}
					return nil
				})
			}
			_ = eg.Wait()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tREPO\tTAG\tPUBLISHED")
			for i, p := range ps {
				tag, published := "-", "-"
				switch {
				case errs[i] != nil:
					tag = errs[i].Error()
				case latest[i] != nil:
					tag, published = latest[i].TagName, humanTime(latest[i].PublishedAt)
				}
				fmt.Fprintf(w, "%s\t%s/%s\t%s\t%s\n", p.Name, p.Owner, p.Repo, tag, published)
			}
			return w.Flush()
		},
	})

	var outDir string
	download := &cobra.Command{
		Use:   "download <owner/repo|url> <tag> <asset>",
		Short: "Download a release asset, through the mirror if one is set",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := parseRepoArg(args[0])
			if err != nil {
				return err
			}
			asset, err := findAsset(ctx, c.Github, owner, repo, args[1], args[2])
			if err != nil {
				return err
			}
			link, err := c.Settings.MirrorDownloadURL(ctx, asset.BrowserDownloadURL)
			if err != nil {
				return err
			}
			start := time.Now()
			dst := filepath.Join(outDir, asset.Name)
			size, err := c.Github.DownloadAsset(ctx, link, dst)
			if err != nil {
				return err
			}
			cost := time.Since(start)
			speed := "-"
			if cost > 0 {
				speed = humanize.IBytes(uint64(float64(size)/cost.Seconds())) + "/s"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s saved, size:%s, speed:%s\n", dst, humanize.IBytes(uint64(size)), speed)
			return nil
		},
	}
	download.Flags().StringVarP(&outDir, "dir", "o", ".", "output directory")
	root.AddCommand(download)
	return root
}

func findAsset(ctx context.Context, cli github.IClient, owner, repo, tag, name string) (*github.Asset, error) {
	rs, err := cli.GetReleases(ctx, owner, repo, 0)
	if err != nil {
		return nil, err
	}
	for _, r := range rs {
		if r.TagName != tag {
			continue
		}
		for _, a := range r.Assets {
			if a.Name == name {
				return a, nil
			}
		}
		return nil, fmt.Errorf("asset:%s not found in release:%s", name, tag)
	}
	return nil, fmt.Errorf("release:%s not found in %s/%s", tag, owner, repo)
}

func NewRepoCmd(c *Context) *cobra.Command {
	ctx := context.Background()
	root := &cobra.Command{
		Use:   "repo",
		Short: "Show repository information",
	}
	root.AddCommand(&cobra.Command{
		Use:   "show <owner/repo|url>",
		Short: "Print repository details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := parseRepoArg(args[0])
			if err != nil {
				return err
			}
			r, err := c.Github.GetRepo(ctx, owner, repo)
			if err != nil {
				return err
			}
			printRepo(cmd, r)
			return nil
		},
	})
	return root
}

func printRepo(cmd *cobra.Command, r *github.Repo) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", r.FullName)
	if len(r.Description) > 0 {
		fmt.Fprintf(out, "  %s\n", r.Description)
	}
	fmt.Fprintf(out, "  stars:%s forks:%s language:%s updated:%s\n",
		humanize.Comma(r.StargazersCount), humanize.Comma(r.ForksCount), r.Language, humanTime(r.UpdatedAt))
	fmt.Fprintf(out, "  %s\n", r.HTMLURL)
	fmt.Fprintf(out, "  share:%s\n", github.BuildOwnerRepoURL(r.Owner.Login, r.Name))
}

func NewUserCmd(c *Context) *cobra.Command {
	ctx := context.Background()
	root := &cobra.Command{
		Use:   "user",
		Short: "Show GitHub users and their repositories",
	}
	root.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Print user details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := c.Github.GetUser(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n  %s\n  avatar:%s\n", u.Login, u.HTMLURL, u.AvatarURL)
			return nil
		},
	})
	var perPage int
	repos := &cobra.Command{
		Use:   "repos <name>",
		Short: "List repositories of a user, recently updated first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := c.Github.GetUserRepos(ctx, args[0], perPage)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "REPO\tSTARS\tLANGUAGE\tUPDATED\tLINK")
			for _, r := range rs {
				link := r.HTMLURL
				if len(link) == 0 {
					link = github.RepoHTMLURL(r.Owner.Login, r.Name)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.FullName, humanize.Comma(r.StargazersCount), r.Language, humanTime(r.UpdatedAt), link)
			}
			return w.Flush()
		},
	}
	repos.Flags().IntVarP(&perPage, "per-page", "p", 0, "repos per page, default from config")
	root.AddCommand(repos)
	return root
}

func init() {
	register(NewReleaseCmd)
	register(NewRepoCmd)
	register(NewUserCmd)
}
