// Package services contains server-side business logic: the note lifecycle,
// access control, templates, analytics and export. Services own the rules;
// repositories and the storage gateway are collaborators injected through
// interfaces.
package services
