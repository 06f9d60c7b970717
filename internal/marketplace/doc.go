// Package marketplace provides typed access to the podmatch REST API.
//
// Service wraps an authenticated apiclient and the local session. Account
// calls keep the session in step with the server; listing, comment, rating,
// bookmark and messaging calls return plain Go values. Comment endpoints come
// in two shapes (podcasts and expert profiles) and both satisfy
// comments.Backend.
package marketplace
