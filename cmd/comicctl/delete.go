// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <title> <chapter-key>",
		Short: "Delete a chapter and its hosted pages",
		Long: "Delete a chapter's hosted pages, then remove the chapter from the comic.\n" +
			"The chapter key may be given as Chapter12 or 12.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			service, err := ctx.chapterService(runCtx)
			if err != nil {
				return err
			}

			reporter := newReporter(cmd.ErrOrStderr(), "deleting")
			result, err := service.DeleteChapter(runCtx, args[0], args[1], reporter.Report)
			reporter.Close()
			if err != nil {
				return err
			}

			cleanup := result.Cleanup
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Removed %s from %q\n", result.ChapterKey, args[0])
			fmt.Fprintf(out, "  pages %d, deleted %d, unresolved %d\n", cleanup.Pages, cleanup.Deleted, cleanup.Unresolved)
			if cleanup.PrefixSwept {
				fmt.Fprintf(out, "  folder sweep removed %d more\n", cleanup.PrefixDeleted)
			}
			if !cleanup.Complete {
				fmt.Fprintln(out, "  warning: some pages may remain on the asset host")
			}
			return nil
		},
	}
}
