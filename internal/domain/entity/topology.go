package entity

// Topology is the requested route shape.
type Topology string

const (
	// TopologyLoop returns to the starting point.
	TopologyLoop Topology = "loop"
	// TopologyOutAndBack reverses along the same path.
	TopologyOutAndBack Topology = "out_and_back"
	// TopologyPointToPoint has a distinct start and end.
	TopologyPointToPoint Topology = "point_to_point"
)

// Valid reports whether the topology is one of the known shapes.
func (t Topology) Valid() bool {
	switch t {
	case TopologyLoop, TopologyOutAndBack, TopologyPointToPoint:
		return true
	}

	return false
}

// Label returns the display name used in route metadata.
func (t Topology) Label() string {
	switch t {
	case TopologyLoop:
		return "Loop"
	case TopologyOutAndBack:
		return "Out and Back"
	case TopologyPointToPoint:
		return "Point to Point"
	}

	return "Route"
}

// InitialWaypointCount is the waypoint count the assembler starts from.
func (t Topology) InitialWaypointCount() int {
	if t == TopologyLoop {
		return 2
	}

	return 1
}

// MaxWaypointCount caps how many waypoints the assembler will try.
func (t Topology) MaxWaypointCount() int {
	if t == TopologyLoop {
		return 4
	}

	return 2
}

// ClosesOnStart reports whether the route's destination is its origin.
func (t Topology) ClosesOnStart() bool {
	return t == TopologyLoop
}
