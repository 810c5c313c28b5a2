package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hafarna03aja-droid/final-foto-video-creation/internal/history"
)

func historyCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect, export, or clear the local creation history",
	}
	cmd.AddCommand(
		historyListCmd(cfgPath),
		historyExportCmd(cfgPath),
		historyClearCmd(cfgPath),
		historyWatchCmd(cfgPath),
	)
	return cmd
}

func historyListCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List creations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			items := a.history.Items()
			if len(items) == 0 {
				fmt.Println("History is empty.")
				return nil
			}
			for _, it := range items {
				printRecord(it)
			}
			return nil
		},
	}
}

func printRecord(it history.Record) {
	ts := time.UnixMilli(it.Timestamp).Format("2006-01-02 15:04")
	prompt := it.Prompt
	if len(prompt) > 60 {
		prompt = prompt[:57] + "..."
	}
	fmt.Printf("%d  %-9s  %s  %s\n", it.ID, it.Kind, ts, prompt)
}

func historyExportCmd(cfgPath *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export one creation to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id int64
			if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}

			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			for _, it := range a.history.Items() {
				if it.ID != id {
					continue
				}
				name, obj, err := a.history.ExportFile(ctx, it)
				if err != nil {
					return err
				}
				if out == "" {
					out = name
				}
				if err := os.WriteFile(out, obj.Bytes, 0644); err != nil {
					return err
				}
				fmt.Printf("Exported %s (%s, %d bytes)\n", out, obj.MIME, len(obj.Bytes))
				return nil
			}
			return fmt.Errorf("no history record with id %d", id)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <kind>-<id>.<ext>)")
	return cmd
}

func historyClearCmd(cfgPath *string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all history records and their media",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear without --yes")
			}
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.history.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("History cleared.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func historyWatchCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow history changes made by other processes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Println("Watching history (ctrl-c to stop)...")
			return a.history.Watch(cmd.Context(), func(items []history.Record) {
				fmt.Printf("-- %d record(s) --\n", len(items))
				for i, it := range items {
					if i == 5 {
						fmt.Println("   ...")
						break
					}
					printRecord(it)
				}
			})
		},
	}
}
