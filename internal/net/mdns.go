package net

import (
	"fmt"
	"net"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/hashicorp/mdns"
)

// Host is a shared canvas found on the local network.
type Host struct {
	Name string
	Addr string
}

// Advertise announces a shared canvas on port.
func Advertise(service string, port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	zone, err := mdns.NewMDNSService(host, service, "", "", port, nil, []string{"LocalPaint"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: zone})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Browse collects hosts answering within timeout.
func Browse(service string, timeout time.Duration) ([]Host, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	found := make(map[string]Host)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if h, ok := hostFromEntry(e); ok {
				found[h.Addr] = h
			}
		}
	}()

	params := mdns.DefaultParams(service)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	<-done
	if err != nil {
		return nil, fmt.Errorf("mdns lookup %s: %w", service, err)
	}

	hosts := make([]Host, 0, len(found))
	for _, h := range found {
		hosts = append(hosts, h)
	}
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].Addr < hosts[j].Addr })
	return hosts, nil
}

func hostFromEntry(e *mdns.ServiceEntry) (Host, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Host{}, false
	}
	return Host{
		Name: e.Host,
		Addr: net.JoinHostPort(e.AddrV4.String(), strconv.Itoa(e.Port)),
	}, true
}
