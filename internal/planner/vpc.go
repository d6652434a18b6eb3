package planner

import (
	"errors"
	"fmt"

	"github.com/hogwarts-cloud/capturectl/internal/models"
	"github.com/hogwarts-cloud/capturectl/internal/network"
)

const (
	DefaultVpcCidr          = "10.0.0.0/16"
	DefaultNumAZs           = 2
	DefaultPublicSubnetMask = 28
)

var ErrNoAvailabilityZones = errors.New("no availability zones to place the vpc in")

// NetworkHints carries what the operator and the region can tell the
// planner about network layout.
type NetworkHints struct {
	CaptureCidr       string
	ViewerCidr        string
	AvailabilityZones []string
}

// CaptureVpc carries a created network forward untouched and otherwise
// derives one from the requested or default CIDR.
func CaptureVpc(previous *models.VpcPlan, hints NetworkHints) (*models.VpcPlan, error) {
	if previous.IsComplete() {
		return previous, nil
	}

	block := hints.CaptureCidr
	if block == "" {
		block = DefaultVpcCidr
	}

	return newVpcPlan(block, hints.AvailabilityZones)
}

// ViewerVpc returns nil when the viewer shares the capture network.
func ViewerVpc(previous *models.VpcPlan, hints NetworkHints) (*models.VpcPlan, error) {
	if previous.IsComplete() {
		return previous, nil
	}

	if hints.ViewerCidr == "" {
		return nil, nil
	}

	return newVpcPlan(hints.ViewerCidr, hints.AvailabilityZones)
}

func newVpcPlan(block string, availabilityZones []string) (*models.VpcPlan, error) {
	if len(availabilityZones) == 0 {
		return nil, ErrNoAvailabilityZones
	}

	cidr, err := network.ParseCidr(block)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cidr: %w", err)
	}

	azs := make([]string, min(DefaultNumAZs, len(availabilityZones)))
	copy(azs, availabilityZones)

	return &models.VpcPlan{
		Cidr:             cidr,
		AZs:              azs,
		PublicSubnetMask: DefaultPublicSubnetMask,
	}, nil
}
