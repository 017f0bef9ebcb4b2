package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"blocks-cms/internal/domain/registry"

	"github.com/spf13/cobra"
)

var modelsJSON bool

var modelsCmd = &cobra.Command{
	Use:   "models [name]",
	Short: "List registered models or describe one",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reg := loadRegistry()

		if len(args) == 1 {
			d, err := reg.Resolve(args[0])
			if err != nil {
				fatal("Unknown model", err)
			}
			describe(d)
			return
		}

		models := reg.Models()
		if modelsJSON {
			names := make([]string, 0, len(models))
			for _, m := range models {
				names = append(names, m.Name)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(map[string]any{"models": names, "aliases": reg.Aliases()}); err != nil {
				fatal("Failed to encode", err)
			}
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MODEL\tTABLE\tFLAGS")
		for _, m := range models {
			fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, m.TableName, flags(m))
		}
		w.Flush()

		aliases := reg.Aliases()
		if len(aliases) > 0 {
			old := make([]string, 0, len(aliases))
			for k := range aliases {
				old = append(old, k)
			}
			sort.Strings(old)
			fmt.Println()
			for _, k := range old {
				fmt.Printf("%s -> %s (deprecated)\n", k, aliases[k])
			}
		}
	},
}

func flags(d *registry.ModelDescriptor) string {
	var out []string
	if d.HasContent {
		out = append(out, "content:"+d.ContentTable)
	}
	if d.HasSettings {
		out = append(out, "settings")
	}
	if d.IsBlock {
		out = append(out, "block")
	}
	return strings.Join(out, ",")
}

func describe(d *registry.ModelDescriptor) {
	fmt.Printf("%s (table %s) %s\n", d.Name, d.TableName, flags(d))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, n := range d.AttributeNames() {
		a := d.Attributes[n]
		var notes []string
		if a.Required {
			notes = append(notes, "required")
		}
		if a.Unique {
			notes = append(notes, "unique")
		}
		if a.MaxLength > 0 {
			notes = append(notes, fmt.Sprintf("max %d", a.MaxLength))
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", a.Name, a.Type, strings.Join(notes, " "))
	}
	for _, n := range d.RelationNames() {
		r := d.Relations[n]
		target := r.Target
		if r.PivotTable != "" {
			target += " via " + r.PivotTable
		} else if r.ForeignKey != "" {
			target += " on " + r.ForeignKey
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", r.Name, r.Kind, target)
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "Output as JSON")
}
