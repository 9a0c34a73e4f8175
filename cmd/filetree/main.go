package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/temirov/filetree/internal/cli"
	"github.com/temirov/filetree/internal/utils"
)

// main is the entry point for the filetree command.
func main() {
	logLevel := zap.NewAtomicLevelAt(zap.InfoLevel)
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(logLevel)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	applicationExecutionError := cli.Execute(ctx, cli.Dependencies{Logger: loggerInstance, LogLevel: &logLevel})
	stop()
	if applicationExecutionError != nil {
		loggerInstance.Debug(utils.ApplicationExecutionFailedMessage, zap.Error(applicationExecutionError))
		_ = loggerInstance.Sync()
		os.Exit(1)
	}
	_ = loggerInstance.Sync()
}
