package utils

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func mustParseCIDR(s string) net.IPNet {
	_, network, err := net.ParseCIDR(s)
	if err != nil {
		panic(err)
	}

	return *network
}

func Test_AddressCount(t *testing.T) {
	testCases := []struct {
		prefixLen int
		expected  int
	}{
		{prefixLen: 16, expected: 65536},
		{prefixLen: 28, expected: 16},
		{prefixLen: 32, expected: 1},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, AddressCount(tc.prefixLen))
	}
}

func Test_NetworksOverlap(t *testing.T) {
	testCases := []struct {
		name     string
		a        net.IPNet
		b        net.IPNet
		expected bool
	}{
		{
			name:     "disjoint",
			a:        mustParseCIDR("10.0.0.0/16"),
			b:        mustParseCIDR("10.1.0.0/16"),
			expected: false,
		},
		{
			name:     "nested",
			a:        mustParseCIDR("10.0.0.0/16"),
			b:        mustParseCIDR("10.0.128.0/24"),
			expected: true,
		},
		{
			name:     "nested reversed",
			a:        mustParseCIDR("10.0.128.0/24"),
			b:        mustParseCIDR("10.0.0.0/8"),
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NetworksOverlap(tc.a, tc.b))
		})
	}
}

func Test_CeilDiv(t *testing.T) {
	assert.Equal(t, 10, CeilDiv(20, 2))
	assert.Equal(t, 64, CeilDiv(388800, 6144))
	assert.Equal(t, 1, CeilDiv(0.01, 0.25))
}

func Test_RoundUpEven(t *testing.T) {
	assert.Equal(t, 64, RoundUpEven(63))
	assert.Equal(t, 2, RoundUpEven(2))
}
