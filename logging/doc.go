// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer WorkflowLogger with contextual
// helpers (workflow, run, component) and domain specific logging helpers for
// agent invocations, dispatch decisions and run completion.
package logging
