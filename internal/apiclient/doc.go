// Package apiclient sends authenticated JSON requests to the marketplace REST
// API.
//
// Client attaches the stored bearer token to each request. When a protected
// request is rejected with 401 it exchanges the refresh token for a new access
// token and replays the request exactly once. Concurrent rejections share a
// single refresh call. A failed refresh clears the stored session so callers
// observe an unauthenticated state and decide how to react.
package apiclient
