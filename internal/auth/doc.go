// Package auth provides registration, credential verification, session
// management and request authorization for the library application.
//
// The pieces fit together as middleware layers: CSRF protection runs
// first, then session load/save, then the handlers. Role and ownership
// checks are centralized here: RequireAuth and RequireAdmin guard route
// groups, and handlers read the acting identity from the session rather
// than trusting client-supplied ids.
package auth
