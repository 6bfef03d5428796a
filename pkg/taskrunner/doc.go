// Package taskrunner hosts the shared abstractions for running task file
// targets. It exposes the `Runner` interface plus helpers (`Factory`,
// `Resolve`, `BuildDependencies`) so CLI packages can inject
// runner.Dependencies once and obtain a runner, while unit tests can swap in
// fakes. This keeps orchestration logic in `internal/runner` reusable without
// wiring duplication.
package taskrunner
