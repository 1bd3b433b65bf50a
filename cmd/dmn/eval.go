package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tablekit/dmn"
	"github.com/tablekit/dmn/reader"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate a decision against variables",
	Long: `Evaluate a decision of a file against variables given with --var name=value
(values are YAML: --var age=16 --var tiers=[gold,silver]) or read from --vars-file.
Without --id the file must hold exactly one decision.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		id, _ := cmd.Flags().GetString("id")
		pairs, _ := cmd.Flags().GetStringArray("var")
		varsFile, _ := cmd.Flags().GetString("vars-file")
		output, _ := cmd.Flags().GetString("output")

		d, err := readDecision(file, id)
		if err != nil {
			return err
		}

		vars := map[string]any{}
		if varsFile != "" {
			if vars, err = readVariables(varsFile); err != nil {
				return err
			}
		}
		flagVars, err := parseVars(pairs)
		if err != nil {
			return err
		}
		maps.Copy(vars, flagVars)

		res, err := newEvaluator().Evaluate(cmd.Context(), d, dmn.NewVariables(vars))
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), res, output)
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringP("file", "f", "", "decision file (YAML)")
	evalCmd.Flags().String("id", "", "id of the decision to evaluate")
	evalCmd.Flags().StringArray("var", nil, "variable as name=value, repeatable")
	evalCmd.Flags().String("vars-file", "", "YAML or JSON file with variables")
	evalCmd.Flags().StringP("output", "o", "table", "output format (table, json)")
	_ = evalCmd.MarkFlagRequired("file")
}

func readDecision(file, id string) (*dmn.Decision, error) {
	ds, err := reader.ReadFile(file)
	if err != nil {
		return nil, err
	}
	if id == "" {
		if len(ds) != 1 {
			return nil, fmt.Errorf("%s holds %d decisions, select one with --id", file, len(ds))
		}
		return ds[0], nil
	}
	for _, d := range ds {
		if d.ID() == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", dmn.ErrDecisionNotFound, id, file)
}

// readVariables reads a YAML (or JSON) mapping of variables.
func readVariables(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{}
	if err := yaml.NewDecoder(bytes.NewReader(b)).Decode(&vars); err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading variables from %s: %w", path, err)
	}
	if vars == nil {
		// a null document
		vars = map[string]any{}
	}
	return vars, nil
}

// parseVars parses name=value pairs. Values are decoded as YAML, so numbers,
// booleans and lists keep their type.
func parseVars(pairs []string) (map[string]any, error) {
	vars := make(map[string]any, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid variable %q, expected name=value", p)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		vars[name] = v
	}
	return vars, nil
}

func printResult(w io.Writer, res *dmn.DecisionResult, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "table", "":
		_, err := fmt.Fprintln(w, res.String())
		return err
	}
	return fmt.Errorf("unknown output format %q", format)
}
