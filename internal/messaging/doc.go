// Package messaging polls a direct-message thread on a fixed interval and
// reports only the polls that changed something.
package messaging
