// Package generation is the boundary between concept extraction and the
// large language models that do the generating, critiquing and refining.
//
// ConceptService and FlashcardGenerator are the interfaces the rest of the
// application depends on. ModelService implements both on top of any
// Completer, which is the narrow interface a model provider (Gemini or
// OpenAI, see internal/platform) has to satisfy. Prompts come from a YAML
// catalog, request payloads are built as JSON documents, and model output
// is parsed leniently and validated against the domain bounds.
package generation
