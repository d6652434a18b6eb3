package models

// CaptureFlavor is a capture instance type the planner knows how to size.
type CaptureFlavor struct {
	InstanceType       string
	TrafficPerInstance float64 // Gbps
	MaxTraffic         float64 // Gbps
	MinNodes           int
	CPU                int
	Memory             int
}

type DataNodeFlavor struct {
	InstanceType  string
	VolumeSizeGiB int
	MaxNodes      int
}

func (f DataNodeFlavor) Capacity() int {
	return f.VolumeSizeGiB * f.MaxNodes
}

type MasterNodeFlavor struct {
	InstanceType string
	IsArm        bool
	MaxShards    int
	MaxDataNodes int
}
