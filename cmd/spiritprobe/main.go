package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/vision-probe/internal/cli"
	"github.com/samvad-hq/vision-probe/internal/domain"
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "spiritprobe failed: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return cli.Main(ctx, cli.Options{
		Tool: domain.ToolSpirit,
		Name: "spiritprobe",
		Args: os.Args[1:],
	})
}
