/*
Package framing offers the decode buffer used to split a session's byte
stream into complete messages.

A Buffer accumulates bytes received from the transport and hands the
unconsumed portion to a message decoder. A decoder reporting a short
read (io.EOF or io.ErrUnexpectedEOF) leaves every buffered byte in
place for the next Feed, so no input is lost across partial reads.
*/
package framing
