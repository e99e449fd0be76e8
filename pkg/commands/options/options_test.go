package options

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPOptions(t *testing.T) {
	o := &MCPOptions{Host: "0.0.0.0", Port: 8080, Path: "rpc"}
	assert.Equal(t, "/rpc", o.EndpointPath())

	addr, err := o.ListenAddr()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", addr)

	bound := &net.TCPAddr{IP: net.IPv4zero, Port: 41234}
	assert.Equal(t, "http://127.0.0.1:41234/rpc", o.URL(bound))

	o.Host, o.TLSCert, o.TLSKey = "::1", "cert.pem", "key.pem"
	assert.Equal(t, "https://[::1]:41234/rpc", o.URL(bound))

	o.Port = 70000
	_, err = o.ListenAddr()
	assert.Error(t, err)

	assert.Equal(t, "/mcp", (&MCPOptions{}).EndpointPath())
}

func TestOnOptions(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	got, err := (&OnOptions{}).GetOn(now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = (&OnOptions{OnString: "2026-3-9"}).GetOn(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), got)

	got, err = (&OnOptions{OnString: "2/28"}).GetOn(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), got)

	_, err = (&OnOptions{OnString: "yesterday"}).GetOn(now)
	assert.Error(t, err)
}

func TestHeatmapResolve(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	year, month, err := (&HeatmapOptions{}).Resolve(now)
	require.NoError(t, err)
	assert.Equal(t, 2026, year)
	assert.Equal(t, time.October, month)

	year, month, err = (&HeatmapOptions{Year: 2025, Month: 2}).Resolve(now)
	require.NoError(t, err)
	assert.Equal(t, 2025, year)
	assert.Equal(t, time.February, month)

	_, _, err = (&HeatmapOptions{Month: 13}).Resolve(now)
	assert.Error(t, err)
}
