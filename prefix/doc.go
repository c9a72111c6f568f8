/*
Package prefix models the route change events the routing engine emits
and builds the prefix notifications sent to the network controller.

A path learned from a BGP peer is reported as a remote prefix
(prefix.add_remote or prefix.delete_remote) and carries the path's VPN
label. A path originated by a local VRF table is reported as a local
prefix (prefix.add_local or prefix.delete_local) and carries the origin
route distinguisher instead.
*/
package prefix
