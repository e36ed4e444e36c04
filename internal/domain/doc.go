// Package domain holds the shared types of the dues front-end: the account
// and role model, the billing records served by the remote API, and the
// session snapshot consumed by the navigation guard.
package domain
