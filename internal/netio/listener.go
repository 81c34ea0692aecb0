// Package netio binds the two Unix-domain stream sockets probes
// connect to and turns their brace-delimited JSON stream into bus
// messages.
package netio

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"os"

	"github.com/sifis-home/netspot-control/internal/bus"
	"github.com/sifis-home/netspot-control/internal/messages"
	"github.com/sifis-home/netspot-control/internal/shutdown"
)

// Kind distinguishes which socket a listener binds: probes open
// separate connections for alarms and for periodic data snapshots.
type Kind int

const (
	KindAlarm Kind = iota
	KindData
)

func (k Kind) String() string {
	if k == KindAlarm {
		return "alarm"
	}
	return "data"
}

// Listener binds one Unix socket, accepts connections from probes,
// and publishes decoded messages onto the bus. A bind failure is
// fatal to startup; an accept-loop failure after a successful bind
// terminates only this listener.
type Listener struct {
	kind Kind
	path string
	bus  *bus.Bus
	sig  *shutdown.Signal
}

// New removes any stale file at path and binds a new Unix stream
// listener. The returned Listener has not yet started accepting;
// call Serve to begin, typically in its own goroutine.
func New(kind Kind, path string, b *bus.Bus, sig *shutdown.Signal) (*Listener, net.Listener, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, err
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, nil, err
	}
	return &Listener{kind: kind, path: path, bus: b, sig: sig}, ln, nil
}

// Serve runs the accept loop until the listener errors or shutdown
// fires. It owns ln and closes it before returning.
func (l *Listener) Serve(ln net.Listener) {
	obs := l.sig.Observe()
	defer obs.Release()

	go func() {
		<-obs.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if l.sig.Stopped() {
				return
			}
			log.Printf("%s listener: accept error, stopping: %v", l.kind, err)
			return
		}
		connObs := l.sig.Observe()
		go l.handleConn(connObs, conn)
	}
}

// handleConn reads one JSON object at a time, framed by the first
// '}' byte following the start of the object. This is safe only
// because the schemas it decodes (AlarmMessage, DataMessage) are
// flat — neither contains a nested object nor a string value holding
// a literal '}'. A nested-object producer would break this framing;
// a bracket-balancing scanner is the documented upgrade path.
func (l *Listener) handleConn(obs *shutdown.Observer, conn net.Conn) {
	defer obs.Release()
	defer conn.Close()

	go func() {
		<-obs.Done()
		conn.Close()
	}()

	reader := bufio.NewReader(conn)
	for {
		raw, err := reader.ReadBytes('}')
		if err != nil {
			if err != io.EOF {
				log.Printf("%s listener: connection read error: %v", l.kind, err)
			}
			return
		}

		msg, err := l.decode(raw)
		if err != nil {
			log.Printf("%s listener: dropping malformed object: %v", l.kind, err)
			continue
		}
		l.bus.Publish(msg)
	}
}

func (l *Listener) decode(raw []byte) (messages.Message, error) {
	switch l.kind {
	case KindAlarm:
		var m messages.AlarmMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		var m messages.DataMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	}
}
