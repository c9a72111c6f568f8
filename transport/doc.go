/*
Package transport provides the session transport layer.

A Conn wraps the session's net.Conn so that every read and write goes
through one place which logs transport failures and reports them to the
session, instead of returning raw I/O errors to the protocol loops. The
loops only ever observe a failed Recv or Send as "the session stopped".

A clean peer disconnect is not a failure: Recv reports it as a zero
length read.
*/
package transport
