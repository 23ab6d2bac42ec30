package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dwagelaar/jtrust/src/cli"
	"github.com/dwagelaar/jtrust/src/logger"
	verpkg "github.com/dwagelaar/jtrust/src/version"
)

var version string // set by ldflags, defaults to the version package's value

func init() {
	if version == "" {
		version = verpkg.Version
	}
}

func main() {
	log := logger.NewCLILogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		err := cli.Execute(ctx, version, log)
		select {
		case done <- err:
		case <-ctx.Done():
			log.Println("Operation cancelled, cleaning up...")
		}
	}()

	select {
	case <-sigs:
		log.Println("\nReceived termination signal. Exiting...")
		cancel()
	case err := <-done:
		if err != nil {
			os.Exit(1)
		}
	}
}
