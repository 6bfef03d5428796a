package runner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const (
	stalenessPolicyExistsNameConstant      = "exists"
	stalenessPolicyNewerThanNameConstant   = "newer-than"
	stalenessPolicyContentHashNameConstant = "content-hash"
	unknownStalenessPolicyTemplateConstant = "unknown staleness policy %q (supported: %s, %s, %s)"
	dependencyStatErrorTemplateConstant    = "unable to inspect dependency %q: %w"
	dependencyHashErrorTemplateConstant    = "unable to hash dependency %q: %w"
)

// StalenessVerdict reports how a satisfied file dependency relates to the last recorded run.
type StalenessVerdict int

// Supported staleness verdicts.
const (
	VerdictStale StalenessVerdict = iota
	VerdictFresh
)

// DependencyRecord captures the observed state of a file dependency after a successful run.
type DependencyRecord struct {
	ModificationTime time.Time `json:"modification_time"`
	ContentDigest    string    `json:"content_digest,omitempty"`
}

// StalenessPolicy decides whether a file dependency is satisfied and whether
// it changed since the provided record was taken. A missing file is always an
// error regardless of policy.
type StalenessPolicy interface {
	Name() string
	Evaluate(dependencyPath string, record DependencyRecord, recordAvailable bool) (StalenessVerdict, error)
	Observe(dependencyPath string) (DependencyRecord, error)
}

// ResolveStalenessPolicy maps a configured policy name to an implementation.
func ResolveStalenessPolicy(rawName string) (StalenessPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(rawName)) {
	case "", stalenessPolicyExistsNameConstant:
		return ExistencePolicy{}, nil
	case stalenessPolicyNewerThanNameConstant:
		return ModificationTimePolicy{}, nil
	case stalenessPolicyContentHashNameConstant:
		return ContentHashPolicy{}, nil
	default:
		return nil, fmt.Errorf(
			unknownStalenessPolicyTemplateConstant,
			rawName,
			stalenessPolicyExistsNameConstant,
			stalenessPolicyNewerThanNameConstant,
			stalenessPolicyContentHashNameConstant,
		)
	}
}

// ExistencePolicy requires the dependency file to exist and always treats it as stale.
type ExistencePolicy struct{}

// Name returns the configured policy identifier.
func (ExistencePolicy) Name() string { return stalenessPolicyExistsNameConstant }

// Evaluate reports VerdictStale whenever the dependency exists.
func (ExistencePolicy) Evaluate(dependencyPath string, _ DependencyRecord, _ bool) (StalenessVerdict, error) {
	if _, statError := os.Stat(dependencyPath); statError != nil {
		return VerdictStale, statError
	}
	return VerdictStale, nil
}

// Observe records the current modification time of the dependency.
func (ExistencePolicy) Observe(dependencyPath string) (DependencyRecord, error) {
	return observeModificationTime(dependencyPath)
}

// ModificationTimePolicy treats a dependency as fresh when its modification
// time has not advanced past the recorded observation.
type ModificationTimePolicy struct{}

// Name returns the configured policy identifier.
func (ModificationTimePolicy) Name() string { return stalenessPolicyNewerThanNameConstant }

// Evaluate compares the dependency modification time against the record.
func (ModificationTimePolicy) Evaluate(dependencyPath string, record DependencyRecord, recordAvailable bool) (StalenessVerdict, error) {
	fileInformation, statError := os.Stat(dependencyPath)
	if statError != nil {
		return VerdictStale, statError
	}
	if !recordAvailable || record.ModificationTime.IsZero() {
		return VerdictStale, nil
	}
	if fileInformation.ModTime().After(record.ModificationTime) {
		return VerdictStale, nil
	}
	return VerdictFresh, nil
}

// Observe records the current modification time of the dependency.
func (ModificationTimePolicy) Observe(dependencyPath string) (DependencyRecord, error) {
	return observeModificationTime(dependencyPath)
}

// ContentHashPolicy treats a dependency as fresh when its sha256 digest
// matches the recorded observation.
type ContentHashPolicy struct{}

// Name returns the configured policy identifier.
func (ContentHashPolicy) Name() string { return stalenessPolicyContentHashNameConstant }

// Evaluate compares the dependency content digest against the record.
func (ContentHashPolicy) Evaluate(dependencyPath string, record DependencyRecord, recordAvailable bool) (StalenessVerdict, error) {
	digest, digestError := hashFileContents(dependencyPath)
	if digestError != nil {
		return VerdictStale, digestError
	}
	if !recordAvailable || len(record.ContentDigest) == 0 {
		return VerdictStale, nil
	}
	if digest != record.ContentDigest {
		return VerdictStale, nil
	}
	return VerdictFresh, nil
}

// Observe records the current modification time and content digest of the dependency.
func (ContentHashPolicy) Observe(dependencyPath string) (DependencyRecord, error) {
	record, observeError := observeModificationTime(dependencyPath)
	if observeError != nil {
		return DependencyRecord{}, observeError
	}
	digest, digestError := hashFileContents(dependencyPath)
	if digestError != nil {
		return DependencyRecord{}, digestError
	}
	record.ContentDigest = digest
	return record, nil
}

func observeModificationTime(dependencyPath string) (DependencyRecord, error) {
	fileInformation, statError := os.Stat(dependencyPath)
	if statError != nil {
		return DependencyRecord{}, fmt.Errorf(dependencyStatErrorTemplateConstant, dependencyPath, statError)
	}
	return DependencyRecord{ModificationTime: fileInformation.ModTime()}, nil
}

func hashFileContents(dependencyPath string) (string, error) {
	fileHandle, openError := os.Open(dependencyPath)
	if openError != nil {
		return "", openError
	}
	defer fileHandle.Close()

	digest := sha256.New()
	if _, copyError := io.Copy(digest, fileHandle); copyError != nil {
		return "", fmt.Errorf(dependencyHashErrorTemplateConstant, dependencyPath, copyError)
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}
