package validator

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/hogwarts-cloud/capturectl/internal/models"
)

var (
	ErrInvalidClusterName = errors.New("invalid cluster name")
	ErrInvalidUserConfig  = errors.New("invalid user config")
	ErrInvalidVpcID       = errors.New("invalid vpc id")
)

var (
	clusterNameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	vpcIDRegexp       = regexp.MustCompile(`^vpc-[0-9a-f]+$`)
)

// ValidateClusterName rejects names that cannot be embedded in store keys
// and cloud resource names.
func ValidateClusterName(name string) error {
	if !clusterNameRegexp.MatchString(name) {
		return fmt.Errorf("%w: %q may only contain letters, digits, '-' and '_'", ErrInvalidClusterName, name)
	}

	return nil
}

func ValidateVpcID(vpcID string) error {
	if !vpcIDRegexp.MatchString(vpcID) {
		return fmt.Errorf("%w: %q", ErrInvalidVpcID, vpcID)
	}

	return nil
}

func ValidateUserConfig(overrides models.UserConfigOverrides) error {
	if overrides.ExpectedTraffic != nil && *overrides.ExpectedTraffic <= 0 {
		return fmt.Errorf("%w: expected traffic must be positive", ErrInvalidUserConfig)
	}

	for name, value := range map[string]*int{
		"spi days":     overrides.SpiDays,
		"history days": overrides.HistoryDays,
		"replicas":     overrides.Replicas,
		"pcap days":    overrides.PcapDays,
	} {
		if value != nil && *value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidUserConfig, name)
		}
	}

	for key := range overrides.ExtraTags {
		if key == "" {
			return fmt.Errorf("%w: extra tag keys must not be empty", ErrInvalidUserConfig)
		}
	}

	return nil
}
