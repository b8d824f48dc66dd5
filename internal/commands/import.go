// internal/commands/import.go
package fewshot

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwiater/fewshot/internal/dataset"
)

var importReplace bool

// importCmd implements 'import', which loads train/ and test/ example files
// from a directory into the project's dataset.
var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import train and test example files into the dataset",
	Long: `The 'import' command reads <dir>/train and <dir>/test. Each file holds three sections
separated by a line of ten dashes: the condition as key=value lines, the input and the output.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		store, err := dataset.Open(cfg.DatasetDriver(), cfg.DatasetDSN())
		if err != nil {
			return err
		}
		defer store.Close()

		counts, err := store.ImportDir(cmd.Context(), args[0], importReplace)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d train and %d test examples into the %s dataset\n",
			counts[dataset.Train], counts[dataset.Test], cfg.DatasetDriver())
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "remove existing rows before importing")
	rootCmd.AddCommand(importCmd)
}
