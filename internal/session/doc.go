// Package session owns the locally persisted credential pair and the cached
// current-user record.
//
// All reads and writes of the four session entries go through Session so the
// API client, the CLI and logout share one view of authentication state.
package session
