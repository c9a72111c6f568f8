/*
Package session offers the network controller RPC Session.

A Session owns one connection to the controller peer. Sessions are
created using the New function, providing the connection, the Source of
outgoing route events and the dispatch.Dispatcher handling inbound
requests and notifications.

Session execution

Run starts two loops and returns once both have exited.

The incoming loop reads from the connection, feeds the bytes to the
session's message decoder and handles each complete envelope in order.
Requests are dispatched and answered with a success or error response;
notifications are dispatched without a reply; responses are logic
errors, since the session never sends requests of its own. Malformed
input is logged and skipped. A zero length read means the peer closed
the connection, which stops the session.

The outgoing loop waits on the Source, builds a prefix notification for
each route event and writes it to the peer. A closed Source stops the
session.

Both loops yield to the scheduler after every batch of work.

Stopping

Stop cancels the session's context and closes the connection, which
unblocks both loops wherever they wait. Stop is idempotent and may be
called at any time, even before Run. Transport failures stop the session
too; they are logged and never returned from the loops or from
SendNotification, which only reports ErrStopped.

Logic errors are logged and skipped unless Config.StrictLogic is set, in
which case the first one stops the session and is returned by Run.
*/
package session
