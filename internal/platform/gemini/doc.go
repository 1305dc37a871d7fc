// Package gemini provides a generation.Completer backed by Google's Gemini
// API through the google.golang.org/genai SDK.
package gemini
