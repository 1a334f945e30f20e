package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/agentic-research/appseeds/api"
)

func (a *app) datasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List the datasets found under the search root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := a.source()
			if err != nil {
				return err
			}
			names, err := src.Datasets()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	var (
		id, label, format string
		where             []string
	)
	cmd := &cobra.Command{
		Use:   "show <type>",
		Short: "Print resolved records of a seed type",
		Example: `  appseeds -d test_data_set show people --label joe_smith
  appseeds -d test_data_set show people --where company_id=mega_corp --where last_name=Smith`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := parseSelector(id, label, where)
			if err != nil {
				return err
			}
			d, err := a.load()
			if err != nil {
				return err
			}
			recs, err := d.Fetch(args[0], sel)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, views(recs))
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Select by integer or uuid identifier")
	cmd.Flags().StringVar(&label, "label", "", "Select by label")
	cmd.Flags().StringArrayVar(&where, "where", nil, "Select by attribute value (key=value, repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format (json|yaml)")
	cmd.MarkFlagsMutuallyExclusive("id", "label", "where")
	return cmd
}

// parseSelector builds a selector from the show flags. Predicate values are
// parsed as YAML scalars so "--where id=456" compares as an integer.
func parseSelector(id, label string, where []string) (api.Selector, error) {
	switch {
	case id != "":
		return api.ByID(id), nil
	case label != "":
		return api.ByLabel(label), nil
	case len(where) > 0:
		pred := make(map[string]any, len(where))
		for _, kv := range where {
			k, raw, ok := strings.Cut(kv, "=")
			if !ok || strings.TrimSpace(k) == "" {
				return api.Selector{}, fmt.Errorf("invalid --where %q (want key=value)", kv)
			}
			var v any
			if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
				v = raw
			}
			pred[strings.TrimSpace(k)] = v
		}
		return api.Where(pred), nil
	}
	return api.All(), nil
}

func (a *app) configValueCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "config-value [key]",
		Short: "Print a merged _config value, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.load()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				all, err := d.ConfigValues()
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), format, all)
			}
			v, ok, err := d.ConfigValue(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no config value for %q", args[0])
			}
			return render(cmd.OutOrStdout(), format, v)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format (json|yaml)")
	return cmd
}

func (a *app) labelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "label <type> <id>",
		Short: "Print the label of the record with the given identifier",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.load()
			if err != nil {
				return err
			}
			label, ok := d.LabelForIdentifier(args[0], args[1])
			if !ok {
				return fmt.Errorf("%w: no %s record with id %s", api.ErrRecordNotFound, args[0], args[1])
			}
			fmt.Fprintln(cmd.OutOrStdout(), label)
			return nil
		},
	}
}

func (a *app) selectCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "select <jsonpath>",
		Short:   "Evaluate a JSONPath expression over the resolved dataset",
		Example: `  appseeds -d test_data_set select '$.people.*.first_name'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.load()
			if err != nil {
				return err
			}
			got, err := d.Select(args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, got)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json|yaml)")
	return cmd
}
