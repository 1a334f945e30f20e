package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/appseeds/internal/codegen"
	"github.com/agentic-research/appseeds/internal/export"
	"github.com/agentic-research/appseeds/internal/mcpserver"
)

func (a *app) exportCmd() *cobra.Command {
	var batch int
	cmd := &cobra.Command{
		Use:   "export <out.db>",
		Short: "Write the resolved dataset into a SQLite database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.load()
			if err != nil {
				return err
			}
			w := export.NewWriter(args[0])
			w.BatchSize = batch
			w.Logger = a.logger
			if err := w.Write(cmd.Context(), d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", d.Name(), args[0])
			return nil
		},
	}
	cmd.Flags().IntVar(&batch, "batch-size", 10000, "Rows per transaction")
	return cmd
}

func (a *app) genCmd() *cobra.Command {
	var pkg string
	cmd := &cobra.Command{
		Use:   "gen <out.go>",
		Short: "Generate Go constants for every record identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := args[0]
			if pkg == "" {
				pkg = strings.ReplaceAll(filepath.Base(filepath.Dir(absPath(out))), "-", "")
			}
			d, err := a.load()
			if err != nil {
				return err
			}
			src, err := codegen.Generate(d, pkg)
			if err != nil {
				return err
			}
			return os.WriteFile(out, src, 0o644)
		},
	}
	cmd.Flags().StringVarP(&pkg, "package", "p", "", "Package name (default: output directory name)")
	return cmd
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dataset to MCP clients over stdio",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := a.load()
			if err != nil {
				return err
			}
			a.logger.Info("serving dataset over stdio", "dataset", d.Name())
			return mcpserver.New(d).ServeStdio()
		},
	}
}
