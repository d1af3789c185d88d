package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"zupos_panel/internal/routes"
)

func newRouteCmd() *cobra.Command {
	var (
		list    bool
		reverse string
	)

	cmd := &cobra.Command{
		Use:   "route [controller] [action]",
		Short: "Show the panel path a menu target resolves to",
		Example: `  panelctl route Store Index
  panelctl route --overrides
  panelctl route --path /dashboard/stok-tanimlari/depo-tanimlama`,
		Args: func(cmd *cobra.Command, args []string) error {
			if list || reverse != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.RangeArgs(1, 2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if reverse != "" {
				key, ok := routes.Lookup(reverse)
				if !ok {
					return errors.New("no menu target resolves to " + reverse)
				}
				fmt.Fprintf(out, "%s/%s\n", key.Controller, key.Action)
				return nil
			}
			if list {
				overrides := routes.Overrides()
				keys := make([]routes.Key, 0, len(overrides))
				for k := range overrides {
					keys = append(keys, k)
				}
				sort.Slice(keys, func(i, j int) bool {
					if keys[i].Controller != keys[j].Controller {
						return keys[i].Controller < keys[j].Controller
					}
					return keys[i].Action < keys[j].Action
				})
				for _, k := range keys {
					fmt.Fprintf(out, "%s/%s\t%s\n", k.Controller, k.Action, overrides[k])
				}
				return nil
			}

			action := ""
			if len(args) == 2 {
				action = args[1]
			}
			fmt.Fprintln(out, routes.Resolve(args[0], action))
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "overrides", false, "list the paths that do not follow /dashboard/{controller}/{action}")
	cmd.Flags().StringVar(&reverse, "path", "", "print the controller/action a panel path stands for")
	cmd.MarkFlagsMutuallyExclusive("overrides", "path")
	return cmd
}
