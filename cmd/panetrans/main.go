package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/oukeidos/panetrans/internal/cleanup"
	"github.com/oukeidos/panetrans/internal/version"
)

func main() {
	execute()
}

func execute() {
	cmd := newRootCmd()
	err := fang.Execute(
		context.Background(),
		cmd,
		fang.WithVersion(version.Info()),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	)
	if cleanupErr := cleanup.RunAll(); cleanupErr != nil {
		fmt.Fprintln(os.Stderr, cleanupErr)
		if err == nil {
			err = cleanupErr
		}
	}
	if err != nil {
		os.Exit(1)
	}
}
