package taskfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	commentPrefixConstant                  = "#"
	variableAssignmentSeparatorConstant    = "="
	targetSeparatorConstant                = ":"
	actionIndentConstant                   = "\t"
	parseErrorMessageTemplateConstant      = "line %d: %s"
	readTaskFileErrorTemplateConstant      = "unable to read task file %q: %w"
	actionOutsideTargetMessageConstant     = "action line outside of a target block"
	spaceIndentedActionMessageConstant     = "action lines must be indented with a tab"
	emptyTargetNameMessageConstant         = "target name cannot be empty"
	emptyVariableNameMessageConstant       = "variable name cannot be empty"
	malformedLineMessageTemplateConstant   = "line is neither a variable assignment nor a target declaration: %s"
	duplicateTargetMessageTemplateConstant = "target %q defined multiple times"
	variableNameWhitespaceMessageConstant  = "variable name cannot contain whitespace"
	dependencyListWhitespaceCutsetConstant = " \t"
)

// ParseError reports a malformed task file with the offending line number.
type ParseError struct {
	Line    int
	Message string
}

// Error implements the error interface.
func (parseError ParseError) Error() string {
	return fmt.Sprintf(parseErrorMessageTemplateConstant, parseError.Line, parseError.Message)
}

// ParseFile reads and parses the task file at the provided path.
func ParseFile(path string) (*Document, error) {
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return nil, fmt.Errorf(readTaskFileErrorTemplateConstant, path, openError)
	}
	defer fileHandle.Close()
	return Parse(fileHandle)
}

// Parse consumes a task file document from the provided reader.
func Parse(reader io.Reader) (*Document, error) {
	document := NewDocument()
	scanner := bufio.NewScanner(reader)

	var currentTarget *Target
	lineNumber := 0

	flushTarget := func() error {
		if currentTarget == nil {
			return nil
		}
		if addError := document.addTarget(*currentTarget); addError != nil {
			return ParseError{Line: currentTarget.Line, Message: fmt.Sprintf(duplicateTargetMessageTemplateConstant, currentTarget.Name)}
		}
		currentTarget = nil
		return nil
	}

	for scanner.Scan() {
		lineNumber++
		rawLine := scanner.Text()

		if strings.HasPrefix(rawLine, actionIndentConstant) {
			if currentTarget == nil {
				return nil, ParseError{Line: lineNumber, Message: actionOutsideTargetMessageConstant}
			}
			actionLine := strings.TrimSpace(strings.TrimPrefix(rawLine, actionIndentConstant))
			if len(actionLine) == 0 || strings.HasPrefix(actionLine, commentPrefixConstant) {
				continue
			}
			currentTarget.Actions = append(currentTarget.Actions, actionLine)
			continue
		}

		trimmedLine := strings.TrimSpace(rawLine)
		if len(trimmedLine) == 0 || strings.HasPrefix(trimmedLine, commentPrefixConstant) {
			continue
		}

		if rawLine != trimmedLine && looksLikeAction(rawLine) {
			return nil, ParseError{Line: lineNumber, Message: spaceIndentedActionMessageConstant}
		}

		if flushError := flushTarget(); flushError != nil {
			return nil, flushError
		}

		if target, isTarget, targetError := parseTargetDeclaration(trimmedLine, lineNumber); targetError != nil {
			return nil, targetError
		} else if isTarget {
			currentTarget = &target
			continue
		}

		if parsed, isAssignment, assignmentError := parseVariableAssignment(trimmedLine, lineNumber); assignmentError != nil {
			return nil, assignmentError
		} else if isAssignment {
			document.setVariable(parsed.name, parsed.value)
			continue
		}

		return nil, ParseError{Line: lineNumber, Message: fmt.Sprintf(malformedLineMessageTemplateConstant, trimmedLine)}
	}

	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}

	if flushError := flushTarget(); flushError != nil {
		return nil, flushError
	}

	return document, nil
}

type variableAssignment struct {
	name  string
	value string
}

// parseVariableAssignment recognizes `name = value` lines. Assignments are
// distinguished from target declarations by the parser trying target syntax
// first, so a colon before the equals sign never reaches this function.
func parseVariableAssignment(line string, lineNumber int) (variableAssignment, bool, error) {
	separatorIndex := strings.Index(line, variableAssignmentSeparatorConstant)
	if separatorIndex < 0 {
		return variableAssignment{}, false, nil
	}

	name := strings.TrimSpace(line[:separatorIndex])
	value := strings.TrimSpace(line[separatorIndex+1:])
	if len(name) == 0 {
		return variableAssignment{}, false, ParseError{Line: lineNumber, Message: emptyVariableNameMessageConstant}
	}
	if strings.ContainsAny(name, dependencyListWhitespaceCutsetConstant) {
		return variableAssignment{}, false, ParseError{Line: lineNumber, Message: variableNameWhitespaceMessageConstant}
	}

	return variableAssignment{name: name, value: value}, true, nil
}

func parseTargetDeclaration(line string, lineNumber int) (Target, bool, error) {
	separatorIndex := strings.Index(line, targetSeparatorConstant)
	if separatorIndex < 0 {
		return Target{}, false, nil
	}

	equalsIndex := strings.Index(line, variableAssignmentSeparatorConstant)
	if equalsIndex >= 0 && equalsIndex < separatorIndex {
		return Target{}, false, nil
	}

	name := strings.TrimSpace(line[:separatorIndex])
	if len(name) == 0 {
		return Target{}, false, ParseError{Line: lineNumber, Message: emptyTargetNameMessageConstant}
	}
	if strings.ContainsAny(name, dependencyListWhitespaceCutsetConstant) {
		return Target{}, false, nil
	}

	dependencies := strings.Fields(strings.Trim(line[separatorIndex+1:], dependencyListWhitespaceCutsetConstant))

	return Target{Name: name, Dependencies: dependencies, Line: lineNumber}, true, nil
}

func looksLikeAction(rawLine string) bool {
	return strings.HasPrefix(rawLine, " ")
}
