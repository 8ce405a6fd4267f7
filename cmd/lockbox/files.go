package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/docker/go-units"
	"github.com/pixperk/lockbox/pkg/types"
	"github.com/pixperk/lockbox/pkg/workflow"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List stored files with their sizes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, c, err := connect(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			names, err := c.List(ctx)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no files")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSIZE")
			for _, name := range names {
				size, err := c.Size(ctx, name)
				if err != nil {
					return err
				}
				// deleted between list and size
				if size == types.SizeNotFound {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\n", name, units.HumanSize(float64(size)))
			}
			return w.Flush()
		},
	}
}

func newPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <local-file> [remote-name]",
		Short: "Upload a file, replacing any stored file of the same name",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			local := args[0]
			name := filepath.Base(local)
			if len(args) == 2 {
				name = args[1]
			}

			f, err := os.Open(local)
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return err
			}

			_, c, err := connect(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			n, err := c.Workflow(workflow.WithProgress(progress("upload", name))).
				Upload(ctx, name, f, info.Size())
			switch {
			case errors.Is(err, types.ErrLockConflict):
				return fmt.Errorf("%s is being modified by another client, try again later", name)
			case errors.Is(err, types.ErrChunkTooLarge):
				return fmt.Errorf("upload %s: %w, lower client.chunk_size to the server's chunk size", name, types.ErrChunkTooLarge)
			case err != nil:
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (%s)\n", name, units.HumanSize(float64(n)))
			return nil
		},
	}
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <remote-name> [local-file]",
		Short: "Download a file into the download directory",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, c, err := connect(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			name := args[0]
			local := filepath.Join(cfg.Client.DownloadDir, filepath.Base(name))
			if len(args) == 2 {
				local = args[1]
			}
			if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
				return err
			}

			// written next to the target and renamed so a failed download
			// never clobbers an existing local copy
			tmp, err := os.CreateTemp(filepath.Dir(local), "."+filepath.Base(local)+".*")
			if err != nil {
				return err
			}
			defer os.Remove(tmp.Name())

			n, err := c.Workflow(workflow.WithProgress(progress("download", name))).Download(ctx, name, tmp)
			if cerr := tmp.Close(); err == nil {
				err = cerr
			}
			if errors.Is(err, types.ErrNotFound) {
				return fmt.Errorf("%s does not exist on the server", name)
			}
			if err != nil {
				return err
			}
			if err := os.Rename(tmp.Name(), local); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "downloaded %s to %s (%s)\n", name, local, units.HumanSize(float64(n)))
			return nil
		},
	}
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <remote-name>",
		Aliases: []string{"delete"},
		Short:   "Delete a stored file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, c, err := connect(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			name := args[0]
			err = c.Workflow().Delete(ctx, name)
			switch {
			case errors.Is(err, types.ErrLockConflict):
				return fmt.Errorf("%s is being modified by another client, try again later", name)
			case errors.Is(err, types.ErrNotFound):
				return fmt.Errorf("%s does not exist on the server", name)
			case err != nil:
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", name)
			return nil
		},
	}
}

// logs transfer progress at debug level
func progress(op, name string) func(done, total int64) {
	return func(done, total int64) {
		log.Debug().
			Str("op", op).
			Str("name", name).
			Str("done", units.HumanSize(float64(done))).
			Str("total", units.HumanSize(float64(total))).
			Msg("transfer progress")
	}
}
