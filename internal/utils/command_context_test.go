package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithConfigurationFilePathStoresValue(t *testing.T) {
	accessor := NewCommandContextAccessor()
	enriched := accessor.WithConfigurationFilePath(context.Background(), "/etc/tabrun/config.yaml")

	configurationFilePath, exists := accessor.ConfigurationFilePath(enriched)
	require.True(t, exists)
	require.Equal(t, "/etc/tabrun/config.yaml", configurationFilePath)
}

func TestWithTaskFilePathStoresTrimmedValue(t *testing.T) {
	accessor := NewCommandContextAccessor()
	enriched := accessor.WithTaskFilePath(context.Background(), "  ./tabfile ")

	taskFilePath, exists := accessor.TaskFilePath(enriched)
	require.True(t, exists)
	require.Equal(t, "./tabfile", taskFilePath)
}

func TestWithTaskFilePathSkipsEmptyValue(t *testing.T) {
	accessor := NewCommandContextAccessor()
	enriched := accessor.WithTaskFilePath(context.Background(), "   ")

	_, exists := accessor.TaskFilePath(enriched)
	require.False(t, exists)
}

func TestWithExecutionFlagsStoresValues(t *testing.T) {
	accessor := NewCommandContextAccessor()
	flags := ExecutionFlags{DryRun: true, DryRunSet: true, StalenessPolicy: "content-hash", StalenessPolicySet: true}

	enriched := accessor.WithExecutionFlags(context.Background(), flags)

	retrieved, exists := accessor.ExecutionFlags(enriched)
	require.True(t, exists)
	require.Equal(t, flags, retrieved)
}

func TestWithExecutionFlagsHandlesMissingContext(t *testing.T) {
	accessor := NewCommandContextAccessor()

	_, exists := accessor.ExecutionFlags(context.Background())
	require.False(t, exists)
}

func TestWithLogLevelStoresTrimmedValue(t *testing.T) {
	accessor := NewCommandContextAccessor()
	enriched := accessor.WithLogLevel(context.Background(), " debug ")

	logLevel, exists := accessor.LogLevel(enriched)
	require.True(t, exists)
	require.Equal(t, "debug", logLevel)
}

func TestWithLogLevelSkipsEmptyValue(t *testing.T) {
	accessor := NewCommandContextAccessor()
	enriched := accessor.WithLogLevel(context.Background(), "  ")

	_, exists := accessor.LogLevel(enriched)
	require.False(t, exists)
}

func TestAccessorsHandleNilContext(t *testing.T) {
	accessor := NewCommandContextAccessor()

	_, configurationExists := accessor.ConfigurationFilePath(nil)
	require.False(t, configurationExists)
	_, taskFileExists := accessor.TaskFilePath(nil)
	require.False(t, taskFileExists)
	_, flagsExist := accessor.ExecutionFlags(nil)
	require.False(t, flagsExist)
	_, logLevelExists := accessor.LogLevel(nil)
	require.False(t, logLevelExists)
}
