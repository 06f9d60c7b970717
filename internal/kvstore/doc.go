// Package kvstore persists flat string entries in a local SQLite database.
//
// It is the on-disk home of the session: tokens, the cached user object and
// the user type live here between CLI invocations. Writes use WAL journaling
// and retry briefly when another podmatch process holds the database lock.
package kvstore
