package runner_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tabrun/tabrun/internal/runner"
)

func writeDependencyFile(testInstance *testing.T, contents string) string {
	testInstance.Helper()

	dependencyPath := filepath.Join(testInstance.TempDir(), "data.csv")
	require.NoError(testInstance, os.WriteFile(dependencyPath, []byte(contents), 0o644))
	return dependencyPath
}

func TestResolveStalenessPolicy(testInstance *testing.T) {
	testCases := []struct {
		name         string
		rawName      string
		expectedName string
		expectError  bool
	}{
		{name: "default_is_exists", rawName: "", expectedName: "exists"},
		{name: "exists", rawName: "exists", expectedName: "exists"},
		{name: "newer_than", rawName: "newer-than", expectedName: "newer-than"},
		{name: "content_hash", rawName: "content-hash", expectedName: "content-hash"},
		{name: "case_insensitive", rawName: " Content-Hash ", expectedName: "content-hash"},
		{name: "unknown_policy", rawName: "mtime", expectError: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(variablesSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			policy, resolveError := runner.ResolveStalenessPolicy(testCase.rawName)
			if testCase.expectError {
				require.Error(testInstance, resolveError)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedName, policy.Name())
		})
	}
}

func TestExistencePolicy(testInstance *testing.T) {
	dependencyPath := writeDependencyFile(testInstance, "country,score\n")
	policy := runner.ExistencePolicy{}

	verdict, evaluationError := policy.Evaluate(dependencyPath, runner.DependencyRecord{}, false)
	require.NoError(testInstance, evaluationError)
	require.Equal(testInstance, runner.VerdictStale, verdict)

	_, missingError := policy.Evaluate(filepath.Join(testInstance.TempDir(), "absent.csv"), runner.DependencyRecord{}, false)
	require.Error(testInstance, missingError)
}

func TestModificationTimePolicy(testInstance *testing.T) {
	dependencyPath := writeDependencyFile(testInstance, "country,score\n")
	policy := runner.ModificationTimePolicy{}

	record, observeError := policy.Observe(dependencyPath)
	require.NoError(testInstance, observeError)

	verdict, evaluationError := policy.Evaluate(dependencyPath, record, true)
	require.NoError(testInstance, evaluationError)
	require.Equal(testInstance, runner.VerdictFresh, verdict)

	noRecordVerdict, noRecordError := policy.Evaluate(dependencyPath, runner.DependencyRecord{}, false)
	require.NoError(testInstance, noRecordError)
	require.Equal(testInstance, runner.VerdictStale, noRecordVerdict)

	earlierObservation := record.ModificationTime.Add(-2 * time.Hour)
	staleRecord := runner.DependencyRecord{ModificationTime: earlierObservation}
	staleVerdict, staleError := policy.Evaluate(dependencyPath, staleRecord, true)
	require.NoError(testInstance, staleError)
	require.Equal(testInstance, runner.VerdictStale, staleVerdict)
}

func TestContentHashPolicy(testInstance *testing.T) {
	dependencyPath := writeDependencyFile(testInstance, "country,score\n")
	policy := runner.ContentHashPolicy{}

	record, observeError := policy.Observe(dependencyPath)
	require.NoError(testInstance, observeError)
	require.NotEmpty(testInstance, record.ContentDigest)

	verdict, evaluationError := policy.Evaluate(dependencyPath, record, true)
	require.NoError(testInstance, evaluationError)
	require.Equal(testInstance, runner.VerdictFresh, verdict)

	require.NoError(testInstance, os.WriteFile(dependencyPath, []byte("country,score,rank\n"), 0o644))
	changedVerdict, changedError := policy.Evaluate(dependencyPath, record, true)
	require.NoError(testInstance, changedError)
	require.Equal(testInstance, runner.VerdictStale, changedVerdict)
}

func TestStateStoreRoundTrip(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	taskFilePath := filepath.Join(temporaryDirectory, "tabfile")
	dependencyPath := filepath.Join(temporaryDirectory, "data.csv")

	store, storeError := runner.NewStateStore(taskFilePath)
	require.NoError(testInstance, storeError)
	require.False(testInstance, store.HasCompleted("process"))

	store.Update("process", map[string]runner.DependencyRecord{
		dependencyPath: {ModificationTime: time.Now().UTC(), ContentDigest: "digest"},
	})
	require.NoError(testInstance, store.Save())

	reloaded, reloadError := runner.NewStateStore(taskFilePath)
	require.NoError(testInstance, reloadError)
	require.True(testInstance, reloaded.HasCompleted("process"))

	record, recordExists := reloaded.Record("process", dependencyPath)
	require.True(testInstance, recordExists)
	require.Equal(testInstance, "digest", record.ContentDigest)

	_, unknownExists := reloaded.Record("process", filepath.Join(temporaryDirectory, "other.csv"))
	require.False(testInstance, unknownExists)
}

func TestStateStoreRejectsCorruptStateFile(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	taskFilePath := filepath.Join(temporaryDirectory, "tabfile")
	require.NoError(testInstance, os.WriteFile(filepath.Join(temporaryDirectory, ".tabrun.state.json"), []byte("not json"), 0o644))

	_, storeError := runner.NewStateStore(taskFilePath)
	require.Error(testInstance, storeError)
}
