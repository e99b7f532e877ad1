// Package agent provides ready-to-use implementations of the core.Agent
// contract: ModelAgent for language-model-backed capabilities and Func for
// adapting plain Go functions (tests, deterministic processing steps, glue).
package agent
