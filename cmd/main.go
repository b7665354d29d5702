package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "tumorviz",
		Short:         "Классификация МРТ снимков с картой значимости",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newBotCommand(), newServeCommand(), newAnalyzeCommand())
	return root
}
