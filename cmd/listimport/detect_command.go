package main

import (
	"fmt"
	"os"

	"github.com/JonMunkholm/listimport/internal/core"
	"github.com/spf13/cobra"
)

func newDetectCommand(opts *rootOptions) *cobra.Command {
	var mappingFlag string

	cmd := &cobra.Command{
		Use:   "detect FILE",
		Short: "Show how a file would be read without importing it",
		Long: `Detect the format of a list file and print the column mapping.

Examples:
  listimport detect ratings.csv
  listimport detect --mapping '{"title":0,"foreign_id":3}' export.tsv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mapping, err := parseMappingFlag(mappingFlag)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			res, err := core.DetectTable(f, core.DefaultMaxFileSize, mapping)
			if err != nil {
				return fmt.Errorf("%s: %s", args[0], core.FormatUserError(err))
			}

			if opts.json {
				return writeJSON(cmd, res)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderDetect(res))
			if !res.Valid {
				return fmt.Errorf("file cannot be imported: %s", res.Problem)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mappingFlag, "mapping", "", `Column mapping override as JSON, e.g. {"title":0}`)
	return cmd
}

// parseMappingFlag decodes an optional mapping override.
func parseMappingFlag(raw string) (core.ColumnMap, error) {
	if raw == "" {
		return nil, nil
	}
	var m core.ColumnMap
	if err := m.UnmarshalJSON([]byte(raw)); err != nil {
		return nil, fmt.Errorf("invalid mapping: %w", err)
	}
	return m, nil
}
