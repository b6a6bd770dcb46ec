package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"pppoed/internal/log"
)

// ErrScanInProgress is returned when a scan is requested while another
// one is still running
var ErrScanInProgress = errors.New("scan already in progress")

// DefaultTimeout is the per-probe connection timeout
const DefaultTimeout = 2 * time.Second

// defaultConcurrency limits how many hosts are probed at once
const defaultConcurrency = 32

// routerPorts are the TCP ports probed on every host. The MikroTik
// management ports (8728 API, 8729 API-TLS, 8291 Winbox) distinguish a
// RouterOS device from an ordinary host.
var routerPorts = []int{8728, 8729, 8291, 22, 23, 80, 443}

// mikrotikPorts is the subset of routerPorts specific to RouterOS
var mikrotikPorts = map[int]bool{8728: true, 8729: true, 8291: true}

// Candidate is one live host found during a subnet scan
type Candidate struct {
	IP          string        `json:"ip"`
	Hostname    string        `json:"hostname,omitempty"`
	OpenPorts   []int         `json:"open_ports"`
	RTT         time.Duration `json:"rtt_ns,omitempty"`
	Confidence  int           `json:"confidence"`
	LooksRouter bool          `json:"looks_like_router"`
	LastSeen    time.Time     `json:"last_seen"`
}

// Scan is the record of one subnet sweep
type Scan struct {
	Subnet       string      `json:"subnet"`
	StartedAt    time.Time   `json:"started_at"`
	CompletedAt  time.Time   `json:"completed_at"`
	TotalHosts   int         `json:"total_hosts"`
	ScannedHosts int         `json:"scanned_hosts"`
	Candidates   []Candidate `json:"candidates"`
}

// Scanner sweeps a subnet for hosts that look like managed routers.
// Probing is connection-attempt only; no protocol conversation takes
// place. Only one scan runs at a time, mirroring the sync single-flight.
type Scanner struct {
	mu          sync.Mutex
	timeout     time.Duration
	concurrency int
	ports       []int
	icmp        bool
	pinger      *pinger
	scanning    bool
	lastScan    *Scan
}

// Option configures a Scanner
type Option func(*Scanner)

// WithTimeout overrides the per-probe timeout
func WithTimeout(d time.Duration) Option {
	return func(s *Scanner) { s.timeout = d }
}

// WithPorts overrides the probed port list, for tests
func WithPorts(ports []int) Option {
	return func(s *Scanner) { s.ports = ports }
}

// WithICMP enables raw-socket echo probes. Needs privileges; without
// it liveness comes from the TCP probes alone.
func WithICMP() Option {
	return func(s *Scanner) { s.icmp = true }
}

// NewScanner creates a Scanner with TCP-only probing
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		timeout:     DefaultTimeout,
		concurrency: defaultConcurrency,
		ports:       routerPorts,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.icmp {
		s.pinger = newPinger(s.timeout)
	}
	return s
}

// Scanning reports whether a scan is currently running
func (s *Scanner) Scanning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanning
}

// LastScan returns the most recent completed scan, or nil
func (s *Scanner) LastScan() *Scan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastScan
}

// Scan sweeps the given CIDR and returns the hosts that answered.
// A second scan requested while one is running gets ErrScanInProgress.
func (s *Scanner) Scan(ctx context.Context, subnet string) (*Scan, error) {
	ips, err := expandCIDR(subnet)
	if err != nil {
		return nil, fmt.Errorf("parsing subnet: %w", err)
	}

	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		return nil, ErrScanInProgress
	}
	s.scanning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.scanning = false
		s.mu.Unlock()
	}()

	scan := &Scan{
		Subnet:     subnet,
		StartedAt:  time.Now(),
		TotalHosts: len(ips),
	}

	log.Info("starting subnet scan", "subnet", subnet, "hosts", len(ips))

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, ip := range ips {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(ip string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			candidate := s.probeHost(ctx, ip)

			mu.Lock()
			scan.ScannedHosts++
			if candidate != nil {
				scan.Candidates = append(scan.Candidates, *candidate)
			}
			mu.Unlock()
		}(ip)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(scan.Candidates, func(i, j int) bool {
		return ipLess(scan.Candidates[i].IP, scan.Candidates[j].IP)
	})
	scan.CompletedAt = time.Now()

	s.mu.Lock()
	s.lastScan = scan
	s.mu.Unlock()

	log.Info("subnet scan completed",
		"subnet", subnet,
		"found", len(scan.Candidates),
		"duration", scan.CompletedAt.Sub(scan.StartedAt))
	return scan, nil
}

// probeHost checks a single host and returns nil when it looks dead
func (s *Scanner) probeHost(ctx context.Context, ip string) *Candidate {
	candidate := Candidate{IP: ip, LastSeen: time.Now()}

	if s.pinger != nil {
		if alive, rtt := s.pinger.echo(ctx, ip); alive {
			candidate.RTT = rtt
		}
	}

	candidate.OpenPorts = s.probePorts(ctx, ip)
	if len(candidate.OpenPorts) == 0 && candidate.RTT == 0 {
		return nil
	}

	if hostname, err := lookupHostname(ip); err == nil {
		candidate.Hostname = hostname
	}

	for _, p := range candidate.OpenPorts {
		if mikrotikPorts[p] {
			candidate.LooksRouter = true
			break
		}
	}
	candidate.Confidence = confidence(&candidate)

	return &candidate
}

// probePorts attempts a TCP connect on each probed port
func (s *Scanner) probePorts(ctx context.Context, ip string) []int {
	var open []int
	var mu sync.Mutex
	var wg sync.WaitGroup

	dialer := net.Dialer{Timeout: s.timeout}

	for _, port := range s.ports {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()

			address := net.JoinHostPort(ip, fmt.Sprint(p))
			conn, err := dialer.DialContext(ctx, "tcp", address)
			if err != nil {
				return
			}
			conn.Close()

			mu.Lock()
			open = append(open, p)
			mu.Unlock()
		}(port)
	}
	wg.Wait()

	sort.Ints(open)
	return open
}

// confidence scores a candidate from what the probes saw
func confidence(c *Candidate) int {
	score := 30
	if c.Hostname != "" {
		score += 10
	}
	if len(c.OpenPorts) > 0 {
		score += 20
	}
	if c.RTT > 0 {
		score += 10
	}
	if c.LooksRouter {
		score += 30
	}
	if score > 100 {
		score = 100
	}
	return score
}

// lookupHostname performs a reverse DNS lookup
func lookupHostname(ip string) (string, error) {
	names, err := net.LookupAddr(ip)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", errors.New("no PTR record")
	}
	return names[0], nil
}

// expandCIDR lists the usable addresses of a CIDR. The network and
// broadcast addresses are skipped for prefixes of /30 and wider.
func expandCIDR(cidr string) ([]string, error) {
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, err
	}

	ones, bits := ipNet.Mask.Size()
	if bits == 32 && ones >= 31 {
		// point-to-point and host routes have no reserved addresses
		var ips []string
		for ip := ipNet.IP.Mask(ipNet.Mask); ipNet.Contains(ip); inc(ip) {
			ips = append(ips, ip.String())
		}
		return ips, nil
	}

	broadcast := make(net.IP, len(ipNet.IP))
	copy(broadcast, ipNet.IP)
	for i := range ipNet.Mask {
		broadcast[i] |= ^ipNet.Mask[i]
	}

	var ips []string
	for ip := ipNet.IP.Mask(ipNet.Mask); ipNet.Contains(ip); inc(ip) {
		if ip.Equal(ipNet.IP.Mask(ipNet.Mask)) || ip.Equal(broadcast) {
			continue
		}
		ips = append(ips, ip.String())
	}
	return ips, nil
}

// inc increments an IP address in place
func inc(ip net.IP) {
	for j := len(ip) - 1; j >= 0; j-- {
		ip[j]++
		if ip[j] > 0 {
			break
		}
	}
}

// ipLess orders dotted-quad addresses numerically
func ipLess(a, b string) bool {
	pa, pb := net.ParseIP(a).To4(), net.ParseIP(b).To4()
	if pa == nil || pb == nil {
		return a < b
	}
	for i := 0; i < 4; i++ {
		if pa[i] != pb[i] {
			return pa[i] < pb[i]
		}
	}
	return false
}
