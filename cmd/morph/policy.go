package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/morph/pkg/morph"
)

func policyCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "policy",
		Short: "List the default control-state handlers",
		Long: `Policy lists the handlers that keep form control state (value,
checked, selected, disabled) in line with the target's attributes.

Attribute handlers run while an element's attributes are synced.
Children handlers run after its subtree has been reconciled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printPolicy(cmd.OutOrStdout(), morph.DefaultPolicy(), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")

	return cmd
}

func printPolicy(w io.Writer, p *morph.Policy, asJSON bool) error {
	entries := p.Entries()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TAG\tPHASE\tNAME")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Tag, e.Phase, e.Name)
	}
	return tw.Flush()
}
