package prefix

import "fmt"

// Source is the origin of a path
type Source int

const (
	// SourceUnknown is the zero Source. Paths must not carry it.
	SourceUnknown Source = iota
	// SourcePeer is a path learned from a BGP peer
	SourcePeer
	// SourceVRFTable is a path originated by a local VRF table
	SourceVRFTable
)

func (s Source) String() string {
	switch s {
	case SourceUnknown:
		return "unknown"
	case SourcePeer:
		return "peer"
	case SourceVRFTable:
		return "vrf-table"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// RouteFamily is a BGP address family and subsequent address family pair
type RouteFamily struct {
	AFI  uint16
	SAFI uint8
}

// Route families known to the routing engine
var (
	IPv4Unicast   = RouteFamily{AFI: 1, SAFI: 1}
	IPv6Unicast   = RouteFamily{AFI: 2, SAFI: 1}
	IPv4VPN       = RouteFamily{AFI: 1, SAFI: 128}
	IPv6VPN       = RouteFamily{AFI: 2, SAFI: 128}
	L2EVPN        = RouteFamily{AFI: 25, SAFI: 70}
	IPv4Flowspec  = RouteFamily{AFI: 1, SAFI: 133}
	IPv6Flowspec  = RouteFamily{AFI: 2, SAFI: 133}
	L2VPNFlowspec = RouteFamily{AFI: 25, SAFI: 134}
)

// VRF route family names, as used by VRF configuration
const (
	VRFFamilyIPv4          = "ipv4"
	VRFFamilyIPv6          = "ipv6"
	VRFFamilyEVPN          = "evpn"
	VRFFamilyIPv4Flowspec  = "ipv4fs"
	VRFFamilyIPv6Flowspec  = "ipv6fs"
	VRFFamilyL2VPNFlowspec = "l2vpnfs"
)

var vrfFamilies = map[RouteFamily]string{
	IPv4Unicast:   VRFFamilyIPv4,
	IPv6Unicast:   VRFFamilyIPv6,
	IPv4VPN:       VRFFamilyIPv4,
	IPv6VPN:       VRFFamilyIPv6,
	L2EVPN:        VRFFamilyEVPN,
	IPv4Flowspec:  VRFFamilyIPv4Flowspec,
	IPv6Flowspec:  VRFFamilyIPv6Flowspec,
	L2VPNFlowspec: VRFFamilyL2VPNFlowspec,
}

// VRFFamily returns the VRF route family name for rf, and false if rf
// has none.
func (rf RouteFamily) VRFFamily() (string, bool) {
	name, ok := vrfFamilies[rf]
	return name, ok
}

func (rf RouteFamily) String() string { return fmt.Sprintf("afi=%d,safi=%d", rf.AFI, rf.SAFI) }

// NLRI is a path's network layer reachability information
type NLRI struct {
	// Prefix is the textual prefix, e.g. "10.0.0.0/24"
	Prefix string
}

// Path is a route to a prefix
type Path struct {
	NLRI        *NLRI
	Nexthop     string
	LabelList   []uint32
	Source      Source
	RouteFamily RouteFamily
	IsWithdraw  bool
	// OriginRD is the route distinguisher of the VRF which originated
	// the path. Only set for VRF table paths.
	OriginRD string
}

// OutgoingRoute is a route change event destined for the controller
type OutgoingRoute struct {
	RouteDist string
	Path      *Path
}
