package channel

import (
	"fmt"
	"smcp/internal/crypto/random"
	"smcp/internal/global"
	"smcp/internal/logctx"
	"smcp/pkg/protocol"
)

// Seals and multicasts a TEXT message. Safe for concurrent callers.
// Socket errors come back wrapped in protocol.ErrIOFailure.
func (channel *Channel) Send(text []byte) (err error) {
	channel.inflight.Add(1)
	defer channel.inflight.Add(-1)

	if channel.State() != StateActive {
		err = ErrNotActive
		return
	}

	err = channel.send(protocol.MsgText, text)
	return
}

func (channel *Channel) send(msgType protocol.MessageType, body []byte) (err error) {
	defer func() {
		if err != nil {
			channel.Metrics.SendFailures.Add(1)
		}
	}()

	sequence, err := channel.nextSequence()
	if err != nil {
		return
	}
	nonce, err := random.Uint32()
	if err != nil {
		err = fmt.Errorf("failed drawing nonce: %w", err)
		return
	}

	section, err := channel.engine.Seal(channel.cfg.Username, sequence, nonce, body)
	if err != nil {
		return
	}

	header := protocol.Header{
		Version:   protocol.ProtocolVersion,
		SessionID: channel.attrs.SessionID,
		Type:      msgType,
	}
	datagram, err := protocol.AuthenticatedBytes(header, channel.attrs, section, channel.engine.MACSize())
	if err != nil {
		return
	}
	tag, err := channel.engine.Tag(datagram)
	if err != nil {
		return
	}
	datagram = append(datagram, tag...)

	if len(datagram) > channel.cfg.MaxDatagram {
		err = fmt.Errorf("%w: %s datagram of %d bytes exceeds limit of %d",
			protocol.ErrIOFailure, msgType, len(datagram), channel.cfg.MaxDatagram)
		return
	}

	_, err = channel.cfg.Conn.WriteTo(datagram, channel.cfg.Group)
	if err != nil {
		err = fmt.Errorf("%w: %w", protocol.ErrIOFailure, err)
		return
	}
	channel.Metrics.Sent.Add(1)

	logctx.LogEvent(channel.ctx, global.VerbosityData, global.InfoLog,
		"sent %s seq=%d nonce=%08x (%d bytes)\n", msgType, sequence, nonce, len(datagram))
	return
}

// Hands out strictly increasing sequence numbers, reserving a new block when the
// current one runs out so a restart never reuses a number.
func (channel *Channel) nextSequence() (sequence uint32, err error) {
	channel.seqMu.Lock()
	defer channel.seqMu.Unlock()

	if channel.nextSeq >= channel.seqCeiling {
		var start, ceiling uint32
		start, ceiling, err = channel.cfg.Sequences.Reserve(channel.attrs.SessionID, channel.cfg.Username, channel.cfg.SequenceBlock)
		if err != nil {
			err = fmt.Errorf("%w: failed reserving sequence numbers: %w", protocol.ErrIOFailure, err)
			return
		}
		if start < channel.nextSeq {
			start = channel.nextSeq
		}
		channel.nextSeq = start
		channel.seqCeiling = ceiling
	}

	sequence = channel.nextSeq
	channel.nextSeq++
	return
}
