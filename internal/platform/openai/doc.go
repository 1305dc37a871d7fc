// Package openai provides a generation.Completer backed by the OpenAI chat
// completions API, or any compatible endpoint set through openai_base_url.
package openai
