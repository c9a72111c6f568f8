package prefix

import (
	"github.com/andaru/netctrl/message"
	"github.com/andaru/netctrl/ncerr"
)

// Notification methods
const (
	MethodAddRemote    = "prefix.add_remote"
	MethodDeleteRemote = "prefix.delete_remote"
	MethodAddLocal     = "prefix.add_local"
	MethodDeleteLocal  = "prefix.delete_local"
)

// Notification parameter keys
const (
	KeyRouteDistinguisher = "route_distinguisher"
	KeyPrefix             = "prefix"
	KeyNextHop            = "next_hop"
	KeyVPNLabel           = "vpn_label"
	KeyVRFRouteFamily     = "vrf_route_family"
	KeyOriginRD           = "origin_rd"
)

// Build returns the notification reporting route.
//
// Build panics if route, its path or the path's NLRI is nil, or if the
// path has no source. It returns a logic error if the path's route
// family has no VRF family, or if a peer path carries no label.
func Build(route *OutgoingRoute) (*message.Notification, error) {
	if route == nil {
		panic("prefix.Build: nil route")
	}
	path := route.Path
	if path == nil {
		panic("prefix.Build: route has nil path")
	}
	if path.NLRI == nil {
		panic("prefix.Build: path has nil NLRI")
	}
	if path.Source == SourceUnknown {
		panic("prefix.Build: path has no source")
	}

	family, ok := path.RouteFamily.VRFFamily()
	if !ok {
		return nil, ncerr.UnsupportedRouteFamily(ncerr.WithMessage("no VRF route family for " + path.RouteFamily.String()))
	}
	kw := map[string]interface{}{
		KeyRouteDistinguisher: route.RouteDist,
		KeyPrefix:             path.NLRI.Prefix,
		KeyNextHop:            path.Nexthop,
		KeyVRFRouteFamily:     family,
	}

	var method string
	if path.Source == SourceVRFTable {
		kw[KeyOriginRD] = path.OriginRD
		method = MethodAddLocal
		if path.IsWithdraw {
			method = MethodDeleteLocal
		}
	} else {
		if len(path.LabelList) == 0 {
			return nil, ncerr.UnsupportedOutgoing(ncerr.WithMessage("peer path for " + path.NLRI.Prefix + " has no label"))
		}
		kw[KeyVPNLabel] = path.LabelList[0]
		method = MethodAddRemote
		if path.IsWithdraw {
			method = MethodDeleteRemote
		}
	}
	return &message.Notification{Method: method, Params: message.Params{kw}}, nil
}
