/*
Package message implements the MessagePack-RPC envelopes exchanged with
the network controller and their codec.

There are exactly three envelope shapes, each encoded as a msgpack array
with a leading integer type tag:

	Request      = [0, msgid, method, params]
	Response     = [1, msgid, error|nil, result|nil]
	Notification = [2, method, params]

params is always an array of maps; only its first element is used as the
operation's keyword arguments.

The Decoder accepts arbitrary chunks of the incoming byte stream and
returns the envelopes completed by each chunk. Any decoded value that is
not one of the three shapes is rejected at this boundary with a protocol
error, so the rest of the channel only ever sees well formed envelopes.
*/
package message
