package flags

import (
	"strings"
	"sync"
)

const (
	longFlagPrefixConstant      = "--"
	shortFlagPrefixConstant     = "-"
	argumentTerminatorConstant  = "--"
	flagValueSeparatorConstant  = "="
	toggleRegistryInitialLength = 4
)

var (
	toggleFlagRegistryMutex sync.Mutex
	toggleFlagRegistry      = make(map[string]struct{}, toggleRegistryInitialLength)
)

func registerToggleFlagName(flagName string) {
	trimmedName := strings.TrimSpace(flagName)
	if len(trimmedName) == 0 {
		return
	}
	toggleFlagRegistryMutex.Lock()
	defer toggleFlagRegistryMutex.Unlock()
	toggleFlagRegistry[trimmedName] = struct{}{}
}

func toggleFlagRegistered(flagName string) bool {
	toggleFlagRegistryMutex.Lock()
	defer toggleFlagRegistryMutex.Unlock()
	_, exists := toggleFlagRegistry[flagName]
	return exists
}

// NormalizeToggleArguments rewrites detached toggle values such as
// "--dry-run yes" into the attached "--dry-run=yes" form so pflag parses them
// as booleans instead of positional arguments.
func NormalizeToggleArguments(arguments []string) []string {
	normalized := make([]string, 0, len(arguments))
	for argumentIndex := 0; argumentIndex < len(arguments); argumentIndex++ {
		argument := arguments[argumentIndex]
		if argument == argumentTerminatorConstant {
			normalized = append(normalized, arguments[argumentIndex:]...)
			break
		}

		if !isToggleFlagArgument(argument) || argumentIndex+1 >= len(arguments) {
			normalized = append(normalized, argument)
			continue
		}

		candidateValue := arguments[argumentIndex+1]
		if _, parseError := parseToggleValue(candidateValue); parseError != nil {
			normalized = append(normalized, argument)
			continue
		}

		normalized = append(normalized, argument+flagValueSeparatorConstant+strings.TrimSpace(candidateValue))
		argumentIndex++
	}
	return normalized
}

func isToggleFlagArgument(argument string) bool {
	if !strings.HasPrefix(argument, shortFlagPrefixConstant) {
		return false
	}
	if strings.Contains(argument, flagValueSeparatorConstant) {
		return false
	}

	flagName := strings.TrimPrefix(argument, longFlagPrefixConstant)
	if flagName == argument {
		flagName = strings.TrimPrefix(argument, shortFlagPrefixConstant)
	}
	if len(flagName) == 0 {
		return false
	}
	return toggleFlagRegistered(flagName)
}
