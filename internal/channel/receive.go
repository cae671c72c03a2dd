package channel

import (
	"errors"
	"fmt"
	"net"
	"os"
	"runtime/debug"
	"smcp/internal/global"
	"smcp/internal/logctx"
	"smcp/pkg/protocol"
	"time"
)

const receiveBufferSize int = 65535

// Reads datagrams until stop closes. The read deadline only bounds how long a stop goes unnoticed.
func (channel *Channel) receiveLoop() {
	defer close(channel.recvDone)

	ctx := logctx.AppendCtxTag(channel.ctx, global.NSListen)
	buffer := make([]byte, receiveBufferSize)

	for {
		select {
		case <-channel.stop:
			return
		default:
		}

		err := channel.cfg.Conn.SetReadDeadline(time.Now().Add(channel.cfg.PollTimeout))
		if err != nil && errors.Is(err, net.ErrClosed) {
			return
		}

		n, addr, err := channel.cfg.Conn.ReadFrom(buffer)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			channel.Metrics.drop(reasonReadError)
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"failed reading from socket: %v\n", err)
			continue
		}
		if n == 0 {
			continue
		}
		channel.Metrics.Received.Add(1)

		if channel.limiter != nil && !channel.limiter.Allow() {
			channel.Metrics.drop(reasonRateLimited)
			logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
				"dropped datagram from %v: inbound rate limit reached\n", addr)
			continue
		}

		datagram := make([]byte, n)
		copy(datagram, buffer[:n])

		start := time.Now()
		event, reason, err := channel.process(datagram, addr)
		channel.Metrics.observe(time.Since(start))
		if err != nil {
			channel.Metrics.drop(reason)
			logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
				"dropped datagram from %v (%s): %v\n", addr, reason, err)
			continue
		}
		if reason == reasonOwn {
			channel.Metrics.drop(reasonOwn)
			continue
		}

		select {
		case channel.events <- event:
		case <-channel.stop:
			return
		}
	}
}

// Runs one datagram through decode, session check, MAC, decryption and replay check.
// A non-nil error means the datagram is dropped; reason labels why.
func (channel *Channel) process(blob []byte, addr net.Addr) (event Event, reason string, err error) {
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			err = fmt.Errorf("panic while processing datagram: %v\n%s", fatalError, stack)
			reason = "other"
		}
	}()

	datagram, err := protocol.Decode(blob)
	if err != nil {
		reason = protocol.Reason(err)
		return
	}
	err = datagram.CheckSession(channel.attrs)
	if err != nil {
		reason = protocol.Reason(err)
		return
	}
	err = channel.engine.Verify(datagram.Authenticated, datagram.MAC)
	if err != nil {
		reason = protocol.Reason(err)
		return
	}
	payload, err := channel.engine.Open(datagram.Payload)
	if err != nil {
		reason = protocol.Reason(err)
		return
	}

	// Multicast loopback returns our own datagrams; they must not reach the replay registry
	// or a restart would see its own fresh sequence numbers as stale.
	if payload.PeerID == channel.cfg.Username && channel.cfg.IsLocal(addr) {
		reason = reasonOwn
		return
	}

	err = channel.guard.CheckAndRecord(payload.Nonce, payload.PeerID, payload.Sequence, channel.clock.Now())
	if err != nil {
		reason = protocol.Reason(err)
		return
	}
	reason = protocol.Reason(nil)

	event = Event{
		Username:   payload.PeerID,
		Payload:    payload.Body,
		ReceivedAt: channel.clock.Now(),
	}
	switch datagram.Header.Type {
	case protocol.MsgJoin:
		event.Kind = Joined
	case protocol.MsgLeave:
		event.Kind = Left
	case protocol.MsgText:
		event.Kind = MessageReceived
	}
	if udpAddr, ok := addr.(*net.UDPAddr); ok {
		event.Address = udpAddr.IP.String()
		event.Port = udpAddr.Port
	} else if addr != nil {
		event.Address = addr.String()
	}

	logctx.LogEvent(channel.ctx, global.VerbosityData, global.InfoLog,
		"accepted %s from %q at %s:%d seq=%d\n", datagram.Header.Type, event.Username, event.Address, event.Port, payload.Sequence)
	return
}
