package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vathes-labs/pipedash/internal/schema"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables in the target database",
		Long: `List every table the target database exposes, marking the ones a
tables entry in the config mounts as a dashboard.`,
		Example: `  # List tables in the configured target
  pipedash tables`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTables(cmd)
		},
	}
}

func runTables(cmd *cobra.Command) error {
	cfg := GetConfig(cmd.Context())

	ad, err := connect(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = ad.Close() }()

	names, err := ad.TableNames(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	mounted := make(map[string]string, len(cfg.Tables))
	for _, tc := range cfg.Tables {
		mounted[tc.Table] = "/t/" + tc.MountName()
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Columns", "Primary Key", "Mounted At"})

	for _, name := range names {
		meta, err := ad.TableMetadata(cmd.Context(), name)
		if err != nil {
			return err
		}

		var pk []string
		for _, c := range meta.Columns {
			if c.PrimaryKey {
				pk = append(pk, c.Name)
			}
		}
		t.AppendRow(table.Row{name, len(meta.Columns), strings.Join(pk, ", "), mounted[name]})
	}

	t.Render()
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "(%d tables)\n", len(names))
	return nil
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>",
		Short: "Show a table's column schema",
		Long: `Show the column schema of one table: types, the widget kind each
column maps to, nullability, defaults, and foreign keys.`,
		Example: `  # Describe the subject table
  pipedash describe subject`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(cmd, args[0])
		},
	}
}

func runDescribe(cmd *cobra.Command, name string) error {
	cfg := GetConfig(cmd.Context())

	ad, err := connect(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = ad.Close() }()

	tbl, err := schema.NewTable(cmd.Context(), ad, name)
	if err != nil {
		return err
	}

	refs, err := ad.ParentRefs(cmd.Context(), name)
	if err != nil {
		return err
	}
	parents := make(map[string]string, len(refs))
	for _, r := range refs {
		parents[r.Column] = r.ParentTable + "." + r.ParentColumn
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Type", "Widget", "Null", "Default", "Key", "References"})

	for _, c := range tbl.Columns() {
		key := ""
		if c.PrimaryKey {
			key = "PK"
		}
		null := ""
		if c.Nullable {
			null = "yes"
		}
		t.AppendRow(table.Row{c.Name, c.Type, c.Kind.String(), null, c.Default, key, parents[c.Name]})
	}

	t.Render()
	return nil
}
