// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taibuivan/yomira-publish/internal/core/chapter"
)

var pageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var genres []string

	cmd := &cobra.Command{
		Use:   "upload <title> <chapter-number> <dir-or-file>...",
		Short: "Upload a chapter's pages and commit them",
		Long: "Upload every jpg, jpeg and png page found in the given directories or files.\n" +
			"Pages are ordered by the first number in their file name. A comic that does\n" +
			"not exist yet is created with placeholder metadata.",
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[1])
			if err != nil || number < 1 {
				return fmt.Errorf("chapter number must be a positive integer, got %q", args[1])
			}

			files, err := collectPages(args[2:])
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no jpg, jpeg or png files found in %s", strings.Join(args[2:], ", "))
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			service, err := ctx.chapterService(runCtx)
			if err != nil {
				return err
			}

			reporter := newReporter(cmd.ErrOrStderr(), "uploading")
			result, err := service.UploadChapter(runCtx, chapter.UploadRequest{
				ComicTitle:    args[0],
				ChapterNumber: number,
				Files:         files,
				Genres:        genres,
			}, reporter.Report)
			reporter.Close()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Committed %s of %q with %d pages\n", result.ChapterKey, args[0], result.Pages)
			for _, name := range result.Skipped {
				fmt.Fprintf(out, "  skipped %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&genres, "genre", "g", nil, "Genre for a newly created comic (repeatable)")
	return cmd
}

// collectPages expands directories one level deep and keeps page images only.
func collectPages(paths []string) ([]chapter.PageFile, error) {
	var files []chapter.PageFile

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("inspect %s: %w", path, err)
		}

		if !info.IsDir() {
			if page, ok := pageFile(path, info); ok {
				files = append(files, page)
			}
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", path, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			entryInfo, err := entry.Info()
			if err != nil {
				return nil, fmt.Errorf("inspect %s: %w", entry.Name(), err)
			}
			if page, ok := pageFile(filepath.Join(path, entry.Name()), entryInfo); ok {
				files = append(files, page)
			}
		}
	}

	return files, nil
}

func pageFile(path string, info os.FileInfo) (chapter.PageFile, bool) {
	contentType, ok := pageExtensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return chapter.PageFile{}, false
	}
	return chapter.PageFile{
		Name:        info.Name(),
		ContentType: contentType,
		Size:        info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, true
}
