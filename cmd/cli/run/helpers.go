package run

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

func displayCommandHelp(command *cobra.Command) error {
	if command == nil {
		return nil
	}
	return command.Help()
}
