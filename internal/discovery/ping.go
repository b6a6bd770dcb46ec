package discovery

import (
	"context"
	"net"
	"os"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// pinger sends ICMP echo requests. Raw sockets need CAP_NET_RAW, so
// the scanner only builds one when WithICMP is set.
type pinger struct {
	timeout time.Duration
}

func newPinger(timeout time.Duration) *pinger {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &pinger{timeout: timeout}
}

// echo sends one echo request and waits for the reply
func (p *pinger) echo(ctx context.Context, ip string) (bool, time.Duration) {
	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return false, 0
	}
	defer conn.Close()

	message := icmp.Message{
		Type: ipv4.ICMPTypeEcho, Code: 0,
		Body: &icmp.Echo{
			ID:   os.Getpid() & 0xffff,
			Seq:  1,
			Data: []byte("pppoed-probe"),
		},
	}
	data, err := message.Marshal(nil)
	if err != nil {
		return false, 0
	}

	deadline := time.Now().Add(p.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return false, 0
	}

	start := time.Now()
	dst := &net.IPAddr{IP: net.ParseIP(ip)}
	if _, err := conn.WriteTo(data, dst); err != nil {
		return false, 0
	}

	reply := make([]byte, 1500)
	n, _, err := conn.ReadFrom(reply)
	if err != nil {
		return false, 0
	}

	rm, err := icmp.ParseMessage(1, reply[:n])
	if err != nil || rm.Type != ipv4.ICMPTypeEchoReply {
		return false, 0
	}
	return true, time.Since(start)
}
