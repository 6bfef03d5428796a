package cli

import (
	listcmd "github.com/tabrun/tabrun/cmd/cli/list"
	runcmd "github.com/tabrun/tabrun/cmd/cli/run"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Run    runcmd.CommandConfiguration    `mapstructure:"run"`
	List   listcmd.CommandConfiguration   `mapstructure:"list"`
}

// ApplicationCommonConfiguration stores logging and execution defaults shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	DryRun    bool   `mapstructure:"dry_run"`
}

type configurationInitializationPlan struct {
	DirectoryPath string
	FilePath      string
}

func (application *Application) runCommandConfiguration() runcmd.CommandConfiguration {
	return application.configuration.Run.Sanitize()
}

func (application *Application) listCommandConfiguration() listcmd.CommandConfiguration {
	configuration := application.configuration.List
	if len(configuration.File) == 0 {
		configuration.File = application.configuration.Run.File
	}
	return configuration.Sanitize()
}
