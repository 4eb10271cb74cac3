// Package cli implements the interactive NoteKeeper shell. It keeps the
// session token in memory and passes it to every API call.
package cli
