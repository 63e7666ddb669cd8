// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/pkg/slice"
)

func newChaptersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "chapters <title>",
		Short: "List a comic's chapters in reading order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := ctx.comicService(cmd.Context())
			if err != nil {
				return err
			}

			document, err := service.GetComic(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			listing := document.ListChapters()

			rows := make([][]string, 0, len(listing.Keys))
			for _, key := range listing.Keys {
				chapter := document.Chapters[key]
				rows = append(rows, []string{key, strconv.Itoa(len(chapter.Pages)), strconv.Itoa(len(chapter.Comments))})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Chapter", "Pages", "Comments"}, rows, []columnAlignment{alignLeft, alignRight, alignRight}))
			if len(listing.Invalid) > 0 {
				fmt.Fprintf(out, "Ignored malformed keys: %s\n", strings.Join(listing.Invalid, ", "))
			}
			return nil
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var filter comic.Filter
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List comics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := ctx.comicService(cmd.Context())
			if err != nil {
				return err
			}

			comics, total, err := service.ListComics(cmd.Context(), filter, limit, 0)
			if err != nil {
				return err
			}

			rows := slice.Map(comics, func(document *comic.Comic) []string {
				return []string{
					document.Title,
					strings.Join(document.Genres, ", "),
					strconv.Itoa(len(document.Chapters)),
					strconv.FormatFloat(document.AverageRating(), 'f', 1, 64),
				}
			})

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Title", "Genres", "Chapters", "Rating"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight}))
			fmt.Fprintf(out, "%d of %d comics\n", len(comics), total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter.Genre, "genre", "g", "", "Only comics with this genre")
	cmd.Flags().StringVarP(&filter.Query, "query", "q", "", "Title substring")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of comics")
	return cmd
}
