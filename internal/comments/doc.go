// Package comments mirrors a content item's comment tree on the client.
//
// Tree operations are pure: they take a root sequence and return a new one,
// leaving the input untouched so callers can compare old and new values.
// Thread layers the edit and reply affordances on top and talks to the API
// through a Backend.
package comments
