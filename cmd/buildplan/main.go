package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/buildplan/cmd/buildplan/commands"
	"git.home.luguber.info/inful/buildplan/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("buildplan"),
		kong.Description("Resolve layered build configuration into one validated build plan."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	global := commands.NewGlobal(ctx, cli, os.Stdout)
	err := parser.Run(global, cli)
	code := cli.Finish(global, err)
	cancel()
	os.Exit(code)
}
