/*
Package dispatch routes inbound requests and notifications to an
operation registry and classifies the failures.

The registry is the external "call operation by name" facility of the
routing engine. Dispatcher adapts it to the session: keyword arguments
are taken from the first params element, a registry rejection of the
argument types becomes an invalid-parameter protocol error carrying the
text "Invalid type for RPC parameter.", and any other failure is passed
through for the session to describe to the peer.
*/
package dispatch
