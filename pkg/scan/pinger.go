/*
 * Copyright 2025 LANPulse Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package scan implements the liveness probe and address-set helpers.
package scan

import (
	"context"
	"net"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"

	"github.com/lanpulse/lanpulse/pkg/logger"
)

const (
	protocolICMP       = 1 // IANA protocol number for ICMPv4
	defaultPingTimeout = 1 * time.Second
	maxReplySize       = 1500
	identifierMask     = 0xffff
)

var echoPayload = []byte("lanpulse probe")

// Pinger issues single ICMP echo probes. It is stateless apart from the
// echo sequence counter and safe for concurrent use; every Ping call opens
// its own socket.
type Pinger struct {
	timeout time.Duration
	id      int
	seq     atomic.Uint32
	logger  logger.Logger
}

// NewPinger creates a Pinger with the given per-probe timeout.
func NewPinger(timeout time.Duration, log logger.Logger) *Pinger {
	if timeout == 0 {
		timeout = defaultPingTimeout
	}

	return &Pinger{
		timeout: timeout,
		id:      os.Getpid() & identifierMask,
		logger:  log,
	}
}

// Ping probes addr once and reports whether an echo reply arrived before the
// timeout. An unreachable host is a normal false result, never an error;
// socket failures are logged at debug level and also reported as false.
func (p *Pinger) Ping(ctx context.Context, addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil || ip.To4() == nil {
		return false
	}

	if ctx.Err() != nil {
		return false
	}

	conn, unprivileged, err := p.listen()
	if err != nil {
		p.logger.Debug().Err(err).Str("addr", addr).Msg("ICMP socket unavailable")
		return false
	}

	defer func() {
		if cerr := conn.Close(); cerr != nil {
			p.logger.Debug().Err(cerr).Msg("failed to close ICMP socket")
		}
	}()

	seq := int(p.seq.Add(1)) & identifierMask

	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   p.id,
			Seq:  seq,
			Data: echoPayload,
		},
	}

	wire, err := msg.Marshal(nil)
	if err != nil {
		return false
	}

	var dst net.Addr = &net.IPAddr{IP: ip}
	if unprivileged {
		dst = &net.UDPAddr{IP: ip}
	}

	deadline := time.Now().Add(p.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := conn.SetDeadline(deadline); err != nil {
		return false
	}

	if _, err := conn.WriteTo(wire, dst); err != nil {
		return false
	}

	return p.awaitReply(conn, ip, seq, unprivileged)
}

// listen opens an ICMP socket, preferring the unprivileged datagram flavor
// so the binary can run without CAP_NET_RAW when ping_group_range allows it.
func (*Pinger) listen() (conn *icmp.PacketConn, unprivileged bool, err error) {
	if conn, err = icmp.ListenPacket("udp4", ""); err == nil {
		return conn, true, nil
	}

	conn, err = icmp.ListenPacket("ip4:icmp", "0.0.0.0")

	return conn, false, err
}

// awaitReply reads until a matching echo reply, an unrelated error, or the
// socket deadline. Stray replies for other probes sharing the host are
// skipped rather than treated as failures.
func (p *Pinger) awaitReply(conn *icmp.PacketConn, ip net.IP, seq int, unprivileged bool) bool {
	buf := make([]byte, maxReplySize)

	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			return false
		}

		if !peerIP(peer).Equal(ip) {
			continue
		}

		reply, err := icmp.ParseMessage(protocolICMP, buf[:n])
		if err != nil {
			continue
		}

		echo, ok := reply.Body.(*icmp.Echo)
		if reply.Type != ipv4.ICMPTypeEchoReply || !ok {
			continue
		}

		// Datagram sockets rewrite the identifier on Linux, so it is only
		// meaningful on a raw socket.
		if !unprivileged && echo.ID != p.id {
			continue
		}

		if echo.Seq != seq {
			continue
		}

		return true
	}
}

func peerIP(addr net.Addr) net.IP {
	switch a := addr.(type) {
	case *net.UDPAddr:
		return a.IP
	case *net.IPAddr:
		return a.IP
	default:
		return nil
	}
}
