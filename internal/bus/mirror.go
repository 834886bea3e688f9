// Package bus mirrors each exchange onto a websocket for external listeners.
package bus

import (
	"fmt"
	log "log/slog"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
)

type Exchange struct {
	From      string    `json:"from"`
	Kind      string    `json:"kind"`
	Utterance string    `json:"utterance"`
	Reply     string    `json:"reply"`
	Intent    string    `json:"intent,omitempty"`
	At        time.Time `json:"at"`
}

// Mirror publishes exchanges, dialing lazily and redialing after a failed
// write.
type Mirror struct {
	mu      sync.Mutex
	url     string
	timeout time.Duration
	conn    *ws.Conn
	dialer  *ws.Dialer
}

func NewMirror(url string, timeout time.Duration) *Mirror {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Mirror{
		url:     url,
		timeout: timeout,
		dialer:  &ws.Dialer{HandshakeTimeout: timeout},
	}
}

func (m *Mirror) Publish(ex Exchange) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ex.From == "" {
		ex.From = "astra"
	}
	if ex.Kind == "" {
		ex.Kind = "exchange"
	}

	if m.conn == nil {
		log.Debug("Dialing bus", "url", m.url)
		conn, _, err := m.dialer.Dial(m.url, nil)
		if err != nil {
			return fmt.Errorf("dial bus: %w", err)
		}
		m.conn = conn
	}

	_ = m.conn.SetWriteDeadline(time.Now().Add(m.timeout))
	if err := m.conn.WriteJSON(ex); err != nil {
		m.conn.Close()
		m.conn = nil
		return fmt.Errorf("write bus: %w", err)
	}
	return nil
}

func (m *Mirror) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return nil
	}
	msg := ws.FormatCloseMessage(ws.CloseNormalClosure, "")
	_ = m.conn.WriteControl(ws.CloseMessage, msg, time.Now().Add(time.Second))
	err := m.conn.Close()
	m.conn = nil
	return err
}
