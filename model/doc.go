// Package model defines the minimal language model abstraction consumed by
// model-backed agents, together with an in-memory mock implementation for
// tests and examples. Vendor adapters live in the subpackages model/anthropic
// and model/openai.
package model
