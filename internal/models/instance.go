package models

import (
	"errors"
	"fmt"
)

// UserConfig is the operator's sizing intent for a cluster.
type UserConfig struct {
	ExpectedTraffic float64           `json:"expectedTraffic" yaml:"expectedTraffic"`
	SpiDays         int               `json:"spiDays" yaml:"spiDays"`
	HistoryDays     int               `json:"historyDays" yaml:"historyDays"`
	Replicas        int               `json:"replicas" yaml:"replicas"`
	PcapDays        int               `json:"pcapDays" yaml:"pcapDays"`
	ExtraTags       map[string]string `json:"extraTags,omitempty" yaml:"extraTags,omitempty"`
}

// UserConfigOverrides holds the values an operator supplied on this
// invocation. Nil fields were not supplied.
type UserConfigOverrides struct {
	ExpectedTraffic *float64          `yaml:"expectedTraffic"`
	SpiDays         *int              `yaml:"spiDays"`
	HistoryDays     *int              `yaml:"historyDays"`
	Replicas        *int              `yaml:"replicas"`
	PcapDays        *int              `yaml:"pcapDays"`
	ExtraTags       map[string]string `yaml:"extraTags"`
}

// ServiceDetails locates the running service behind a cluster component.
type ServiceDetails struct {
	EcsCluster string `json:"ecsCluster" yaml:"ecsCluster"`
	EcsService string `json:"ecsService" yaml:"ecsService"`
}

// VpcRecord tracks a monitored network attached to a cluster.
type VpcRecord struct {
	VpcID         string `json:"vpcId" yaml:"vpcId"`
	Vni           int    `json:"vni" yaml:"vni"`
	UserSpecified bool   `json:"userSpecified" yaml:"userSpecified"`
}

type Component string

const (
	CaptureComponent Component = "capture"
	ViewerComponent  Component = "viewer"
)

func (c Component) String() string {
	return string(c)
}

var ErrUnknownComponent = errors.New("unknown component")

func ParseComponent(s string) (Component, error) {
	switch c := Component(s); c {
	case CaptureComponent, ViewerComponent:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q, expected capture or viewer", ErrUnknownComponent, s)
	}
}
