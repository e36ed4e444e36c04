// Package session owns the process-wide authentication state: the current
// user, the bearer token, and the startup hydration flag. The Manager is the
// sole writer; everything else reads snapshots or subscribes to transitions.
package session
