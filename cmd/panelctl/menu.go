package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"zupos_panel/internal/menu"
)

func newMenuCmd() *cobra.Command {
	var (
		flags      backendFlags
		languageID int
		asJSON     bool
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Print a user's panel menu with the paths each item opens",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()

			client, s, err := flags.signIn(ctx, cmd)
			if err != nil {
				return err
			}
			defer client.Logout(context.WithoutCancel(ctx), s)

			raw, err := client.MenuList(ctx, s, languageID)
			if err != nil {
				return err
			}
			entries, err := menu.DecodePayload(raw)
			if err != nil {
				return err
			}
			if !all {
				entries = menu.FilterPanel(entries)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			return printMenu(cmd.OutOrStdout(), entries)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&languageID, "language", 1, "languageID sent to getMenuList")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the decoded entries as JSON")
	cmd.Flags().BoolVar(&all, "all", false, "include entries that are not meant for the panel")
	return cmd
}

func printMenu(w io.Writer, entries []menu.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t\t[%s]\n", e.Main.SequenceID, e.Main.Name, menu.MainIcon(e.Main.Name))
		for _, s := range e.Subs {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t[%s]\n", s.SequenceID, s.Name, menu.SubItemPath(s), menu.SubIcon(s.Name))
		}
	}
	if len(entries) == 0 {
		fmt.Fprintln(tw, "menu is empty")
	}
	return tw.Flush()
}
