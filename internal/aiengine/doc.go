// Package aiengine implements the resilient execution engine that all
// AI-backed features are built on: a closed error taxonomy with retry
// eligibility, per-attempt deadlines, exponential-backoff retries, and a
// structured-call wrapper that validates input and output schemas around a
// remote generation call.
package aiengine
