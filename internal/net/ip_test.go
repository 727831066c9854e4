package net

import (
	"net"
	"testing"

	"github.com/hashicorp/mdns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareLinkRoundTrip(t *testing.T) {
	link := ShareLink("192.168.1.20", 8899)
	assert.Equal(t, "localpaint://192.168.1.20:8899", link)
	assert.True(t, IsLink(link))

	addr, err := ParseLink(link + "/")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.20:8899", addr)
	assert.Equal(t, "ws://192.168.1.20:8899/ws", WebSocketURL(addr))
}

func TestParseLinkAcceptsBareAddress(t *testing.T) {
	addr, err := ParseLink(" 10.0.0.5:9000 ")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5:9000", addr)
}

func TestParseLinkRejectsGarbage(t *testing.T) {
	for _, link := range []string{"", "localpaint://", "localpaint://host", "localpaint://:80", "localpaint://h:0", "h:port"} {
		_, err := ParseLink(link)
		assert.Error(t, err, link)
	}
	assert.False(t, IsLink("http://x"))
}

func TestHostFromEntry(t *testing.T) {
	h, ok := hostFromEntry(&mdns.ServiceEntry{Host: "studio.local.", AddrV4: net.IPv4(10, 0, 0, 7), Port: 8899})
	require.True(t, ok)
	assert.Equal(t, Host{Name: "studio.local.", Addr: "10.0.0.7:8899"}, h)

	_, ok = hostFromEntry(&mdns.ServiceEntry{Host: "v6only", Port: 8899})
	assert.False(t, ok)
	_, ok = hostFromEntry(&mdns.ServiceEntry{AddrV4: net.IPv4(10, 0, 0, 7)})
	assert.False(t, ok)
	_, ok = hostFromEntry(nil)
	assert.False(t, ok)
}
