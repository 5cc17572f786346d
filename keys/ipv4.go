package keys

import (
	"fmt"
	"net"
)

// IPToUint32 converts a net.IP to uint32 representation
// Uses BigEndian encoding for consistent network byte order
func IPToUint32(ip net.IP) uint32 {
	ipv4 := ip.To4()
	if ipv4 == nil {
		return 0
	}
	return uint32(ipv4[0])<<24 | uint32(ipv4[1])<<16 | uint32(ipv4[2])<<8 | uint32(ipv4[3])
}

// Uint32ToIP converts a uint32 back to net.IP
func Uint32ToIP(ip uint32) net.IP {
	return net.IPv4(byte(ip>>24), byte(ip>>16), byte(ip>>8), byte(ip))
}

func ipv4Codec() Codec {
	return Codec{
		Name:  "ipv4",
		Width: 4,
		encode: func(dst []byte, text string) error {
			ip := net.ParseIP(text)
			if ip == nil || ip.To4() == nil {
				return fmt.Errorf("invalid IPv4 address %q", text)
			}
			putUint(dst, uint64(IPToUint32(ip)))
			return nil
		},
		decode: func(dst, rec []byte) []byte {
			return append(dst, Uint32ToIP(uint32(getUint(rec))).String()...)
		},
	}
}
