package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/routesales/internal/buildinfo"
	"github.com/dmitrijs2005/routesales/internal/cli"
	"github.com/dmitrijs2005/routesales/internal/config"
	"github.com/dmitrijs2005/routesales/internal/flagx"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	args := flagx.StripFlags(os.Args[1:],
		[]string{"-a", "-d", "-l", "-t", "-c", "-config"},
		[]string{"-v"})

	if err := app.Run(ctx, args); err != nil {
		log.Fatalf("%v", err)
	}
}
