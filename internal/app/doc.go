// Package app holds the application context: the vocabulary and classifier
// loaded once at startup and shared read-only by every request, and the
// prediction flow that composes them.
package app
