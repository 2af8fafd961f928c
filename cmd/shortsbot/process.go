package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"shortsbot/jobs"
	"shortsbot/logger"
)

var processDir string

var processCmd = &cobra.Command{
	Use:   "process [metadata.json...]",
	Short: "Render metadata files into videos",
	Long: `Render one or more {name}-metadata.json files. With --dir every
metadata file in the directory is rendered, a few at a time.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processDir, "dir", "d", "", "render every metadata file in this directory")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	if processDir == "" && len(args) == 0 {
		return errors.New("give metadata files or --dir")
	}

	ctx := cmd.Context()
	manager, closeStore := newJobManager()
	defer closeStore()

	proc, err := newProcessor(ctx, manager)
	if err != nil {
		return err
	}
	if processDir != "" {
		return proc.ProcessDirectory(ctx, processDir)
	}

	var errs []error
	for i, path := range args {
		logger.Sugar().Infof("🎬 [%d/%d] Processing: %s", i+1, len(args), path)
		job := jobs.New("", path)
		if err := manager.Create(ctx, job); err != nil {
			return err
		}
		if err := proc.Process(ctx, job); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		done, err := manager.Get(ctx, job.ID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), done.VideoPath)
	}
	return errors.Join(errs...)
}
