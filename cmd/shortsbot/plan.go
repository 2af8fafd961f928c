package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"shortsbot/captions"
)

var (
	planJSON bool
	planASS  string
)

var planCmd = &cobra.Command{
	Use:   "plan <metadata.json>",
	Short: "Print the caption timeline of a metadata file",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&planJSON, "json", false, "print the plan as JSON")
	planCmd.Flags().StringVar(&planASS, "ass", "", "also write the captions as an ASS subtitle file")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	_, plan, settings, err := planFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if planASS != "" {
		f, err := os.Create(planASS)
		if err != nil {
			return err
		}
		if err := captions.WriteASS(f, plan, settings); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if planJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	fmt.Fprintf(out, "%d batches, %.2fs\n", plan.Batches, plan.Duration)
	for _, cue := range plan.Cues {
		marker := " "
		if w, ok := cue.Active(); ok {
			marker = w.Text
		}
		fmt.Fprintf(out, "%7.3f %7.3f  [%d] %s %s\n", cue.Start, cue.End, cue.Batch, runewidth.FillRight(cue.Text(), 40), marker)
	}
	return nil
}
