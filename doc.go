/*
Package netctrl is a set of network controller channel libraries for a
BGP speaker.

The channel is a single TCP connection to an external network
controller, carrying MessagePack-RPC messages in both directions. The
controller calls the speaker's operations by name using requests and
notifications, and the speaker reports route changes to the controller
as prefix notifications (prefix.add_remote, prefix.delete_remote,
prefix.add_local and prefix.delete_local) along with forwarded log
entries (logging).

The message sub-directory holds the wire codec. The session
sub-directory runs one controller connection, and the server
sub-directory accepts controller connections, keeping at most one
session active. See cmd/netctrld for a daemon wiring these together.
*/
package netctrl
