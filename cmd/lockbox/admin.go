package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server status and held locks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, c, err := connect(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			st, err := c.Status(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "server:     %s\n", cfg.Client.Server)
			fmt.Fprintf(out, "uptime:     %s\n", units.HumanDuration(time.Duration(st.UptimeSeconds)*time.Second))
			fmt.Fprintf(out, "files:      %d\n", st.Files)
			fmt.Fprintf(out, "chunk size: %s\n", units.BytesSize(float64(st.MaxChunkSize)))
			if st.LockTtlSeconds > 0 {
				fmt.Fprintf(out, "lock ttl:   %s\n", time.Duration(st.LockTtlSeconds)*time.Second)
			} else {
				fmt.Fprintln(out, "lock ttl:   none")
			}
			fmt.Fprintf(out, "locks:      %d\n", st.Locks)

			if len(st.HeldLocks) > 0 {
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "\nFILE\tHOLDER\tEXPIRES IN")
				for _, l := range st.HeldLocks {
					expires := "never"
					if l.RemainingMs > 0 {
						expires = (time.Duration(l.RemainingMs) * time.Millisecond).Round(time.Second).String()
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", l.Name, l.Holder, expires)
				}
				return w.Flush()
			}
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent lock and file operations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, c, err := connect(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			entries, err := c.History(ctx, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SEQ\tTIME\tOP\tFILE\tHOLDER")
			for _, e := range entries {
				ts := time.Unix(0, e.UnixNano).Format(time.RFC3339)
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.Seq, ts, e.Op, e.Name, e.Holder)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	return cmd
}
