/*
Package server offers the network controller server: a TCP listener
accepting one controller peer at a time.

Each accepted connection replaces the active session. The previous
session is stopped, and the server waits for it to finish, before the
new session is created, so at most one session ever reads the outgoing
route Source.
*/
package server
