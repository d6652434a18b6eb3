package utils

import (
	"math"
	"net"
)

// AddressCount returns the number of IPv4 addresses in a network with the
// given prefix length.
func AddressCount(prefixLen int) int {
	return 1 << (32 - prefixLen)
}

// NetworksOverlap reports whether two networks share any address.
func NetworksOverlap(a, b net.IPNet) bool {
	a.IP = a.IP.Mask(a.Mask)
	b.IP = b.IP.Mask(b.Mask)

	return a.Contains(b.IP) || b.Contains(a.IP)
}

func CeilDiv(numerator, denominator float64) int {
	return int(math.Ceil(numerator / denominator))
}

func RoundUpEven(n int) int {
	if n%2 == 0 {
		return n
	}

	return n + 1
}
