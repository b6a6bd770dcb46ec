package discovery

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"
)

func TestExpandCIDR(t *testing.T) {
	tests := []struct {
		cidr  string
		count int
		first string
		last  string
	}{
		{"192.168.88.0/30", 2, "192.168.88.1", "192.168.88.2"},
		{"192.168.88.0/24", 254, "192.168.88.1", "192.168.88.254"},
		{"10.0.0.4/31", 2, "10.0.0.4", "10.0.0.5"},
		{"10.0.0.7/32", 1, "10.0.0.7", "10.0.0.7"},
	}

	for _, tt := range tests {
		t.Run(tt.cidr, func(t *testing.T) {
			ips, err := expandCIDR(tt.cidr)
			if err != nil {
				t.Fatalf("expandCIDR(%q) failed: %v", tt.cidr, err)
			}
			if len(ips) != tt.count {
				t.Fatalf("Expected %d addresses, got %d", tt.count, len(ips))
			}
			if ips[0] != tt.first {
				t.Errorf("Expected first address %s, got %s", tt.first, ips[0])
			}
			if ips[len(ips)-1] != tt.last {
				t.Errorf("Expected last address %s, got %s", tt.last, ips[len(ips)-1])
			}
		})
	}
}

func TestExpandCIDR_Invalid(t *testing.T) {
	if _, err := expandCIDR("not-a-subnet"); err == nil {
		t.Error("Expected error for invalid CIDR")
	}
	if _, err := expandCIDR("300.0.0.0/24"); err == nil {
		t.Error("Expected error for out-of-range octet")
	}
}

func TestIPLess(t *testing.T) {
	if !ipLess("192.168.88.2", "192.168.88.10") {
		t.Error("Expected numeric ordering, not lexicographic")
	}
	if ipLess("192.168.88.10", "192.168.88.2") {
		t.Error("Expected 10 to sort after 2")
	}
	if ipLess("10.0.0.1", "10.0.0.1") {
		t.Error("Expected equal addresses to not be less")
	}
}

func TestConfidence(t *testing.T) {
	base := confidence(&Candidate{})
	withPorts := confidence(&Candidate{OpenPorts: []int{22}})
	router := confidence(&Candidate{
		Hostname:    "gw.local.",
		OpenPorts:   []int{8291, 8728},
		RTT:         2 * time.Millisecond,
		LooksRouter: true,
	})

	if withPorts <= base {
		t.Errorf("Open ports should raise confidence: %d vs %d", withPorts, base)
	}
	if router != 100 {
		t.Errorf("Expected full confidence for a router candidate, got %d", router)
	}
}

func TestRouterPortSignature(t *testing.T) {
	for _, p := range []int{8728, 8729, 8291} {
		if !mikrotikPorts[p] {
			t.Errorf("Port %d should mark a RouterOS device", p)
		}
	}
	for _, p := range []int{22, 80, 443} {
		if mikrotikPorts[p] {
			t.Errorf("Port %d is not RouterOS specific", p)
		}
	}
}

func TestScan_FindsLocalListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to open listener: %v", err)
	}
	defer ln.Close()

	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)

	scanner := NewScanner(
		WithTimeout(500*time.Millisecond),
		WithPorts([]int{port}),
	)

	scan, err := scanner.Scan(context.Background(), "127.0.0.1/32")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if scan.TotalHosts != 1 || scan.ScannedHosts != 1 {
		t.Errorf("Expected 1 host scanned, got %d of %d", scan.ScannedHosts, scan.TotalHosts)
	}
	if len(scan.Candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(scan.Candidates))
	}

	c := scan.Candidates[0]
	if c.IP != "127.0.0.1" {
		t.Errorf("Expected candidate 127.0.0.1, got %s", c.IP)
	}
	if len(c.OpenPorts) != 1 || c.OpenPorts[0] != port {
		t.Errorf("Expected open port %d, got %v", port, c.OpenPorts)
	}
	if c.LooksRouter {
		t.Error("An ephemeral test port should not classify as RouterOS")
	}

	if got := scanner.LastScan(); got == nil || got.Subnet != "127.0.0.1/32" {
		t.Errorf("Expected scan to be recorded, got %+v", got)
	}
}

func TestScan_InvalidSubnet(t *testing.T) {
	scanner := NewScanner()

	if _, err := scanner.Scan(context.Background(), "not-a-subnet"); err == nil {
		t.Error("Expected error for invalid subnet")
	}
	if scanner.Scanning() {
		t.Error("Failed scan should not leave the scanning flag set")
	}
}

func TestScan_SingleFlight(t *testing.T) {
	scanner := NewScanner()
	scanner.mu.Lock()
	scanner.scanning = true
	scanner.mu.Unlock()

	_, err := scanner.Scan(context.Background(), "127.0.0.1/32")
	if err != ErrScanInProgress {
		t.Errorf("Expected ErrScanInProgress, got %v", err)
	}
}

func TestScan_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scanner := NewScanner(WithTimeout(100 * time.Millisecond))

	_, err := scanner.Scan(ctx, "127.0.0.1/32")
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if scanner.LastScan() != nil {
		t.Error("Aborted scan should not be recorded")
	}
	if scanner.Scanning() {
		t.Error("Aborted scan should clear the scanning flag")
	}
}
