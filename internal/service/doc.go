// Package service contains the application use cases that sit between the
// transport layer and the domain: the summarization job executed by task
// workers, and flashcard lookup.
//
// Services receive their collaborators through constructor injection and
// depend only on interfaces from internal/generation and internal/store,
// never on a concrete provider or database.
package service
