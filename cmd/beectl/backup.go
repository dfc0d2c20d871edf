package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"spellingbee/internal/database"
	"spellingbee/internal/service"
)

func newBackupService(db *database.DB) *service.BackupService {
	return service.NewBackupService(db)
}

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = fmt.Sprintf("spellingbee_backup_%s.json", time.Now().Format("20060102_150405"))
			}
			if dir := filepath.Dir(output); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer file.Close()

			if err := newBackupService(db).Export(file); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default spellingbee_backup_YYYYMMDD_HHMMSS.json)")
	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Restore a JSON backup into an empty database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open backup file: %w", err)
			}
			defer file.Close()

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			summary, err := newBackupService(db).Import(file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Import completed:")
			fmt.Fprintf(out, "  Users:     %d\n", summary.Users)
			fmt.Fprintf(out, "  Schools:   %d\n", summary.Schools)
			fmt.Fprintf(out, "  Students:  %d\n", summary.Students)
			fmt.Fprintf(out, "  Words:     %d\n", summary.Words)
			fmt.Fprintf(out, "  Sessions:  %d\n", summary.Sessions)
			fmt.Fprintf(out, "  Payments:  %d\n", summary.Payments)
			fmt.Fprintf(out, "  Sponsors:  %d\n", summary.Sponsors)
			fmt.Fprintf(out, "  Vendors:   %d\n", summary.Vendors)
			fmt.Fprintf(out, "  Resources: %d\n", summary.Resources)
			return nil
		},
	}
}
