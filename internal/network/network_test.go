package network

import (
	"testing"

	"github.com/hogwarts-cloud/capturectl/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseCidr(t *testing.T) {
	testCases := []struct {
		name     string
		block    string
		expected *models.Cidr
		wantErr  bool
	}{
		{
			name:     "happy path",
			block:    "10.0.0.0/16",
			expected: &models.Cidr{Block: "10.0.0.0/16", Prefix: "10.0.0.0", Mask: 16},
		},
		{
			name:    "garbage",
			block:   "10.0.0.0",
			wantErr: true,
		},
		{
			name:    "ipv6",
			block:   "2001:db8::/32",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := ParseCidr(tc.block)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCidr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func Test_UsableIPs(t *testing.T) {
	testCases := []struct {
		name     string
		vpc      *models.VpcPlan
		expected int
	}{
		{
			name: "default two az",
			vpc: &models.VpcPlan{
				Cidr:             &models.Cidr{Block: "10.0.0.0/16", Prefix: "10.0.0.0", Mask: 16},
				AZs:              []string{"us-east-1a", "us-east-1b"},
				PublicSubnetMask: 28,
			},
			expected: 65536 - 32 - 4,
		},
		{
			name: "small three az",
			vpc: &models.VpcPlan{
				Cidr:             &models.Cidr{Block: "10.0.0.0/26", Prefix: "10.0.0.0", Mask: 26},
				AZs:              []string{"a", "b", "c"},
				PublicSubnetMask: 28,
			},
			expected: 64 - 48 - 6,
		},
		{
			name:     "incomplete",
			vpc:      &models.VpcPlan{},
			expected: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, UsableIPs(tc.vpc))
		})
	}
}

func Test_CheckOverlap(t *testing.T) {
	capture := &models.VpcPlan{Cidr: &models.Cidr{Block: "10.0.0.0/16"}}

	assert.NoError(t, CheckOverlap(capture, nil))
	assert.NoError(t, CheckOverlap(capture, &models.VpcPlan{Cidr: &models.Cidr{Block: "10.1.0.0/16"}}))
	assert.ErrorIs(t, CheckOverlap(capture, &models.VpcPlan{Cidr: &models.Cidr{Block: "10.0.4.0/24"}}), ErrVpcOverlap)
}
