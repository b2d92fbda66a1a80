package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"haru/internal/config"
	"haru/internal/export"
	"haru/internal/logging"
	"haru/internal/storage"
	"haru/internal/task"
	"haru/internal/ui"
)

var Version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "haru",
		Short:   "haru - a time-horizon task manager for the terminal",
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, cfg, cleanup, err := setup(configPath)
			if err != nil {
				return err
			}
			defer cleanup()
			return ui.Run(manager, cfg)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigFileName, "path to config file")

	rootCmd.AddCommand(exportCmd(&configPath))
	rootCmd.AddCommand(importCmd(&configPath))
	rootCmd.AddCommand(statsCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(configPath string) (*task.Manager, config.Config, func(), error) {
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("load config: %w", err)
	}

	log := logging.New(cfg.LogPath)

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("open database: %w", err)
	}

	manager, err := task.NewManager(store, log)
	if err != nil {
		store.Close()
		return nil, cfg, nil, err
	}

	cleanup := func() {
		store.Close()
		_ = log.Sync()
	}
	return manager, cfg, cleanup, nil
}

func exportCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the task snapshot to a file or stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, _, cleanup, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			format, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("output")

			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return export.Write(w, manager.Tasks(), format)
		},
	}

	cmd.Flags().StringP("format", "f", export.FormatJSON, "snapshot format (json or yaml)")
	cmd.Flags().StringP("output", "o", "", "output file (default stdout)")

	return cmd
}

func importCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace the task set from a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, _, cleanup, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			format, _ := cmd.Flags().GetString("format")

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			tasks, err := export.Read(f, format)
			if err != nil {
				return err
			}
			if err := manager.Replace(tasks); err != nil {
				return err
			}
			fmt.Printf("Imported %d tasks\n", len(tasks))
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", export.FormatJSON, "snapshot format (json or yaml)")

	return cmd
}

func statsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print task counts per time frame and tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, _, cleanup, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			s := manager.Summary()
			fmt.Printf("today:    %d\n", s.Today)
			fmt.Printf("tomorrow: %d\n", s.Tomorrow)
			fmt.Printf("future:   %d\n", s.Future)
			fmt.Printf("done:     %d\n", s.Completed)
			fmt.Printf("archived: %d\n", s.Archived)
			for _, tc := range s.Tags {
				fmt.Printf("#%s: %d\n", tc.Tag, tc.Count)
			}
			return nil
		},
	}
}
