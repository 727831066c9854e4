package net

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// LinkScheme prefixes share links handed out by a host.
const LinkScheme = "localpaint://"

// GetOutgoingIP finds the preferred local IP address for the host to share.
func GetOutgoingIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// no route to the internet, look at the interfaces instead
		return getLocalIPFallback()
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

// getLocalIPFallback is used on networks without internet access.
func getLocalIPFallback() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	for _, address := range addrs {
		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}
	return "127.0.0.1", nil
}

// ShareLink is the link a host shows to people who want to join.
func ShareLink(ip string, port int) string {
	return LinkScheme + net.JoinHostPort(ip, strconv.Itoa(port))
}

// ParseLink turns a share link (or a bare host:port) into host:port.
func ParseLink(link string) (string, error) {
	addr := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(link), LinkScheme), "/")
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("bad share link %q: %w", link, err)
	}
	if host == "" {
		return "", fmt.Errorf("bad share link %q: missing host", link)
	}
	if p, err := strconv.Atoi(port); err != nil || p <= 0 || p > 65535 {
		return "", fmt.Errorf("bad share link %q: invalid port", link)
	}
	return net.JoinHostPort(host, port), nil
}

// IsLink reports whether arg looks like a share link.
func IsLink(arg string) bool {
	return strings.HasPrefix(arg, LinkScheme)
}

// WebSocketURL is the endpoint a client dials for addr.
func WebSocketURL(addr string) string {
	return "ws://" + addr + WebSocketPath
}
