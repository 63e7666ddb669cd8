// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command comicctl publishes chapters from a local directory into the same
// document store and asset provider the API server uses.
//
// # Usage
//
//	comicctl upload "Solo Leveling" 12 ./scans/ch12 --genre Action
//	comicctl delete "Solo Leveling" Chapter12
//	comicctl chapters "Solo Leveling"
//	comicctl list --genre Action
//	comicctl token user-1 mika --role author
//	comicctl migrate status
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
