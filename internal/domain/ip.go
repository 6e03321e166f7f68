package domain

import (
	"net"
	"regexp"

	"github.com/yl2chen/cidranger"
)

var (
	ipv4Pattern = regexp.MustCompile(`^(([0-9]|[1-9][0-9]|1[0-9]{2}|2[0-4][0-9]|25[0-5])\.){3}([0-9]|[1-9][0-9]|1[0-9]{2}|2[0-4][0-9]|25[0-5])$`)

	ipv6Pattern = regexp.MustCompile(`^(` +
		`([0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}|` +
		`([0-9a-fA-F]{1,4}:){1,7}:|` +
		`([0-9a-fA-F]{1,4}:){1,6}:[0-9a-fA-F]{1,4}|` +
		`([0-9a-fA-F]{1,4}:){1,5}(:[0-9a-fA-F]{1,4}){1,2}|` +
		`([0-9a-fA-F]{1,4}:){1,4}(:[0-9a-fA-F]{1,4}){1,3}|` +
		`([0-9a-fA-F]{1,4}:){1,3}(:[0-9a-fA-F]{1,4}){1,4}|` +
		`([0-9a-fA-F]{1,4}:){1,2}(:[0-9a-fA-F]{1,4}){1,5}|` +
		`[0-9a-fA-F]{1,4}:((:[0-9a-fA-F]{1,4}){1,6})|` +
		`:((:[0-9a-fA-F]{1,4}){1,7}|:)|` +
		`fe80:(:[0-9a-fA-F]{0,4}){0,4}%[0-9a-zA-Z]+|` +
		`::(ffff(:0{1,4})?:)?((25[0-5]|(2[0-4]|1?[0-9])?[0-9])\.){3}(25[0-5]|(2[0-4]|1?[0-9])?[0-9])|` +
		`([0-9a-fA-F]{1,4}:){1,4}:((25[0-5]|(2[0-4]|1?[0-9])?[0-9])\.){3}(25[0-5]|(2[0-4]|1?[0-9])?[0-9])` +
		`)$`)
)

// IsIPv4Literal reports whether s is a dotted-quad IPv4 address.
func IsIPv4Literal(s string) bool {
	return ipv4Pattern.MatchString(s)
}

// IsIPv6Literal reports whether s is a textual IPv6 address.
func IsIPv6Literal(s string) bool {
	return ipv6Pattern.MatchString(s)
}

var privateIPv4 = newPrivateRanger()

func newPrivateRanger() cidranger.Ranger {
	r := cidranger.NewPCTrieRanger()
	for _, cidr := range []string{
		"127.0.0.0/8",
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
	} {
		_, n, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(err)
		}
		if err := r.Insert(cidranger.NewBasicRangerEntry(*n)); err != nil {
			panic(err)
		}
	}
	return r
}

func isPrivateIPv4(ip net.IP) bool {
	v4 := ip.To4()
	if v4 == nil {
		return false
	}
	ok, err := privateIPv4.Contains(v4)
	return err == nil && ok
}
