// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/taibuivan/yomira-publish/internal/platform/progress"
)

// reporter renders progress snapshots as a bar on a terminal and as one line
// per stage change otherwise.
type reporter struct {
	mu     sync.Mutex
	writer io.Writer
	bar    *progressbar.ProgressBar
	stage  string
}

func newReporter(writer io.Writer, description string) *reporter {
	r := &reporter{writer: writer}
	if isTerminal(writer) {
		r.bar = progressbar.NewOptions(progress.Complete,
			progressbar.OptionSetWriter(writer),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowElapsedTimeOnFinish(),
		)
	}
	return r
}

// Report satisfies progress.Func.
func (r *reporter) Report(snapshot progress.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil {
		r.bar.Describe(snapshot.Stage)
		_ = r.bar.Set(snapshot.Percent)
		return
	}

	if snapshot.Stage != r.stage || snapshot.Percent == progress.Complete {
		r.stage = snapshot.Stage
		fmt.Fprintf(r.writer, "%3d%% %s (%d/%d)\n", snapshot.Percent, snapshot.Stage, snapshot.Done, snapshot.Total)
	}
}

func (r *reporter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil {
		_ = r.bar.Exit()
		fmt.Fprintln(r.writer)
	}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
