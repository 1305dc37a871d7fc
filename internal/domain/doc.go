// Package domain contains the core entities of concept extraction: dialogue
// transcripts, concept candidates and their critiques, flashcards, and the
// ordered stages a summarization job reports as it progresses. It has no
// dependencies on infrastructure or delivery mechanisms.
package domain
