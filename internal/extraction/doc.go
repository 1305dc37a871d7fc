// Package extraction implements the generate, critique and refine loop that
// turns a dialogue into a single concept label.
//
// Each call to Extractor.Extract builds its own AgentContext, so concurrent
// extractions never share history.
package extraction
