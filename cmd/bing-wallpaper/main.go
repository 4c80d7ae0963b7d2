package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/santiagofdezg/bing-wallpaper/internal/cli"
	"github.com/santiagofdezg/bing-wallpaper/internal/config"
)

func main() {
	// Handle interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cli.Run(ctx, os.Args[1:], cli.Env{
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		LookupEnv:  os.LookupEnv,
		DotEnvDir:  ".",
		ConfigPath: config.DefaultPath(),
	})

	stop()
	os.Exit(code)
}
