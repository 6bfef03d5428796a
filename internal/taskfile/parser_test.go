package taskfile_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tabrun/tabrun/internal/taskfile"
)

const (
	parserSubtestNameTemplateConstant = "%d_%s"
	testTaskFileDocumentConstant      = "# Happiness pipeline\n" +
		"RAW_DATA = raw_data/WHR2023.csv\n" +
		"PROCESSED_DATA = processed_data/cleaned.csv\n" +
		"\n" +
		"install:\n" +
		"\tpython -m pip install -r requirements.txt\n" +
		"\n" +
		"format:\n" +
		"\tblack src\n" +
		"\n" +
		"process: $RAW_DATA\n" +
		"\tpython src/process.py $RAW_DATA\n" +
		"\n" +
		"analyze: process\n" +
		"\tpython src/analyze.py $PROCESSED_DATA\n" +
		"\n" +
		"all: install format process analyze\n"
)

func TestParseDocument(testInstance *testing.T) {
	document, parseError := taskfile.Parse(strings.NewReader(testTaskFileDocumentConstant))
	require.NoError(testInstance, parseError)

	require.Equal(testInstance, []string{"RAW_DATA", "PROCESSED_DATA"}, document.VariableNames())
	require.Equal(testInstance, "raw_data/WHR2023.csv", document.Variables["RAW_DATA"])
	require.Equal(testInstance, []string{"install", "format", "process", "analyze", "all"}, document.TargetNames())

	processTarget, processExists := document.Target("process")
	require.True(testInstance, processExists)
	require.Equal(testInstance, []string{"$RAW_DATA"}, processTarget.Dependencies)
	require.Equal(testInstance, []string{"python src/process.py $RAW_DATA"}, processTarget.Actions)

	allTarget, allExists := document.Target("all")
	require.True(testInstance, allExists)
	require.Equal(testInstance, []string{"install", "format", "process", "analyze"}, allTarget.Dependencies)
	require.Empty(testInstance, allTarget.Actions)
}

func TestParseRejectsMalformedDocuments(testInstance *testing.T) {
	testCases := []struct {
		name         string
		document     string
		expectedLine int
	}{
		{
			name:         "action_outside_target",
			document:     "\techo orphan\n",
			expectedLine: 1,
		},
		{
			name:         "space_indented_action",
			document:     "build:\n    echo hi\n",
			expectedLine: 2,
		},
		{
			name:         "duplicate_target",
			document:     "build:\n\techo one\nbuild:\n\techo two\n",
			expectedLine: 3,
		},
		{
			name:         "empty_variable_name",
			document:     "= value\n",
			expectedLine: 1,
		},
		{
			name:         "malformed_line",
			document:     "just some words\n",
			expectedLine: 1,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(parserSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			_, parseError := taskfile.Parse(strings.NewReader(testCase.document))
			require.Error(testInstance, parseError)

			var typedError taskfile.ParseError
			require.True(testInstance, errors.As(parseError, &typedError))
			require.Equal(testInstance, testCase.expectedLine, typedError.Line)
		})
	}
}

func TestParseIgnoresCommentsAndBlankLines(testInstance *testing.T) {
	document, parseError := taskfile.Parse(strings.NewReader("# heading\n\nclean:\n\t# inline note\n\trm -rf output\n"))
	require.NoError(testInstance, parseError)

	cleanTarget, cleanExists := document.Target("clean")
	require.True(testInstance, cleanExists)
	require.Equal(testInstance, []string{"rm -rf output"}, cleanTarget.Actions)
}
