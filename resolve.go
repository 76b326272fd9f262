package nblisten

import "net"

// bindAddr 是一个已解析的候选绑定地址。
type bindAddr struct {
	ip   net.IP
	port int
	v6   bool
}

// resolveBindAddrs 将 "host:port" 展开为候选列表，Bind 按序尝试，
// 第一个绑定成功的生效。host 为空表示通配地址，给出 v4/v6 两个候选；
// 域名通过系统解析展开为多候选。
func resolveBindAddrs(address string) ([]bindAddr, error) {
	host, service, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}
	port, err := net.LookupPort("tcp", service)
	if err != nil {
		return nil, err
	}
	if host == "" {
		return []bindAddr{
			{ip: net.IPv4zero, port: port},
			{ip: net.IPv6unspecified, port: port, v6: true},
		}, nil
	}
	if ip := net.ParseIP(host); ip != nil {
		return []bindAddr{{ip: ip, port: port, v6: ip.To4() == nil}}, nil
	}
	ips, err := net.LookupIP(host)
	if err != nil {
		return nil, err
	}
	addrs := make([]bindAddr, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, bindAddr{ip: ip, port: port, v6: ip.To4() == nil})
	}
	return addrs, nil
}
