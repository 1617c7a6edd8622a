package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/skobkin/webbrowser/internal/app"
	"github.com/skobkin/webbrowser/internal/cli"
	"github.com/skobkin/webbrowser/internal/ui"
)

func main() {
	launch := cli.Parse(os.Args)
	if launch.Help {
		if err := writeUsage(os.Stdout, os.Args); err != nil {
			slog.Error("write usage", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.Initialize(ctx, launch)
	if err != nil {
		slog.Error("initialize app runtime", "error", err)
		os.Exit(1)
	}

	var closeOnce sync.Once
	closeRuntime := func() {
		closeOnce.Do(func() {
			if closeErr := rt.Close(); closeErr != nil {
				slog.Warn("close app runtime", "error", closeErr)
			}
		})
	}
	defer closeRuntime()

	err = ui.Run(ui.Dependencies{
		Data: ui.DataDependencies{
			Config:    rt.Config,
			StartURL:  rt.StartURL(),
			Bookmarks: rt.Chronological,
			Bus:       rt.Bus,
		},
		Actions: ui.ActionDependencies{
			Loader:    rt,
			Bookmarks: rt,
			Icons:     rt,
			OnQuit: func() {
				stop()
				closeRuntime()
			},
		},
		Launch: launch,
		Logger: rt.LogManager.Logger("ui"),
	})
	if err != nil {
		slog.Error("run ui", "error", err)
		os.Exit(1)
	}
}

func writeUsage(w io.Writer, args []string) error {
	binary := app.Name
	if len(args) > 0 && args[0] != "" {
		binary = args[0]
	}
	if err := cli.WriteUsage(w, binary); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s\n", versionLine())

	return err
}

func versionLine() string {
	line := app.DisplayName + " " + app.BuildVersion()
	if date := app.BuildDateYMD(); date != "" {
		line += " (" + date + ")"
	}

	return line
}
