package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorConstant       = "_"
	configurationKeySeparatorConstant     = "."
	embeddedConfigurationTemplateConstant = "unable to read embedded configuration: %w"
	configurationFileReadTemplateConstant = "unable to read configuration file: %w"
	configurationDecodeTemplateConstant   = "unable to decode configuration: %w"
	sliceValueSeparatorConstant           = ","
)

// LoadedConfiguration reports where the loaded configuration came from.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// ConfigurationLoader resolves configuration from embedded defaults, discovered
// or explicit configuration files, and prefixed environment variables, in
// ascending precedence.
type ConfigurationLoader struct {
	configurationName         string
	configurationType         string
	environmentPrefix         string
	searchPaths               []string
	embeddedConfiguration     []byte
	embeddedConfigurationType string
}

// NewConfigurationLoader constructs a loader that searches the provided paths
// for a configuration file with the provided name and type.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       append([]string{}, searchPaths...),
	}
}

// SetEmbeddedConfiguration registers baseline configuration content applied
// beneath any discovered configuration file.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationContent []byte, configurationType string) {
	loader.embeddedConfiguration = configurationContent
	loader.embeddedConfigurationType = configurationType
}

// LoadConfiguration populates the target structure. An explicit configuration
// file path bypasses the search paths; an empty path triggers discovery, and a
// missing discovered file is not an error.
func (loader *ConfigurationLoader) LoadConfiguration(explicitConfigurationPath string, defaultValues map[string]any, target any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.configurationName)
	viperInstance.SetConfigType(loader.configurationType)
	for _, searchPath := range loader.searchPaths {
		viperInstance.AddConfigPath(searchPath)
	}

	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparatorConstant, environmentKeySeparatorConstant))
	viperInstance.AutomaticEnv()

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(loader.embeddedConfiguration) > 0 {
		viperInstance.SetConfigType(loader.embeddedConfigurationType)
		if embeddedError := viperInstance.ReadConfig(bytes.NewReader(loader.embeddedConfiguration)); embeddedError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationTemplateConstant, embeddedError)
		}
		viperInstance.SetConfigType(loader.configurationType)
	}

	if len(explicitConfigurationPath) > 0 {
		viperInstance.SetConfigFile(explicitConfigurationPath)
		if readError := viperInstance.MergeInConfig(); readError != nil {
			return LoadedConfiguration{}, fmt.Errorf(configurationFileReadTemplateConstant, readError)
		}
	} else {
		if mergeError := viperInstance.MergeInConfig(); mergeError != nil {
			var configFileNotFoundError viper.ConfigFileNotFoundError
			if !errors.As(mergeError, &configFileNotFoundError) {
				return LoadedConfiguration{}, fmt.Errorf(configurationFileReadTemplateConstant, mergeError)
			}
		}
	}

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(sliceValueSeparatorConstant),
	))
	if decodeError := viperInstance.Unmarshal(target, decodeHook); decodeError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationDecodeTemplateConstant, decodeError)
	}

	return LoadedConfiguration{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}
