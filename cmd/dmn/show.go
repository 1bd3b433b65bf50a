package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tablekit/dmn/reader"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the decision tables of a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		id, _ := cmd.Flags().GetString("id")

		ds, err := reader.ReadFile(file)
		if err != nil {
			return err
		}
		for _, d := range ds {
			if id != "" && d.ID() != id {
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), d.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringP("file", "f", "", "decision file (YAML)")
	showCmd.Flags().String("id", "", "only show the decision with this id")
	_ = showCmd.MarkFlagRequired("file")
}
