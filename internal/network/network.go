package network

import (
	"errors"
	"fmt"
	"net"

	"github.com/hogwarts-cloud/capturectl/internal/models"
	"github.com/hogwarts-cloud/capturectl/pkg/utils"
)

// Each private subnet loses two addresses to the provider.
const ReservedIPsPerPrivateSubnet = 2

var (
	ErrInvalidCidr = errors.New("invalid cidr")
	ErrVpcOverlap  = errors.New("vpc cidrs overlap")
)

func ParseCidr(block string) (*models.Cidr, error) {
	ip, ipNet, err := net.ParseCIDR(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCidr, block)
	}

	if ip.To4() == nil {
		return nil, fmt.Errorf("%w: %s is not ipv4", ErrInvalidCidr, block)
	}

	mask, _ := ipNet.Mask.Size()

	return &models.Cidr{
		Block:  block,
		Prefix: ipNet.IP.String(),
		Mask:   mask,
	}, nil
}

// UsableIPs is the number of addresses left for private subnets once the
// public subnets and per-subnet reservations are taken out.
func UsableIPs(vpc *models.VpcPlan) int {
	if !vpc.IsComplete() {
		return 0
	}

	azs := len(vpc.AZs)
	total := utils.AddressCount(vpc.Cidr.Mask)
	public := azs * utils.AddressCount(vpc.PublicSubnetMask)
	reserved := azs * ReservedIPsPerPrivateSubnet

	return total - public - reserved
}

func CheckOverlap(capture, viewer *models.VpcPlan) error {
	if capture == nil || viewer == nil || capture.Cidr == nil || viewer.Cidr == nil {
		return nil
	}

	_, captureNet, err := net.ParseCIDR(capture.Cidr.Block)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidCidr, capture.Cidr.Block)
	}

	_, viewerNet, err := net.ParseCIDR(viewer.Cidr.Block)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidCidr, viewer.Cidr.Block)
	}

	if utils.NetworksOverlap(*captureNet, *viewerNet) {
		return fmt.Errorf("%w: viewer %s overlaps capture %s", ErrVpcOverlap, viewer.Cidr.Block, capture.Cidr.Block)
	}

	return nil
}
