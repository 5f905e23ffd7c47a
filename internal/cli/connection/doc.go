// Package connection threads rmcloud-cli's stored credential through the
// token exchange and host discovery that every document command needs.
//
// The library keeps no session state; the Manager here holds the user token
// and storage host for the lifetime of one command invocation.
package connection
