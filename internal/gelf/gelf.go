// Package gelf ships log entries to a Graylog input as GELF 1.1 over UDP.
package gelf

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Hook is a logrus hook that sends one GELF message per entry.
type Hook struct {
	mu       sync.Mutex
	conn     net.Conn
	hostname string
	service  string
	levels   []logrus.Level
}

// NewHook dials addr (e.g. "172.17.0.1:12201"). Entries are tagged with
// service in the _service field.
func NewHook(addr, service string) (*Hook, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("gelf dial %s: %w", addr, err)
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = service + "-server"
	}

	return &Hook{conn: conn, hostname: hostname, service: service, levels: logrus.AllLevels}, nil
}

func (h *Hook) Levels() []logrus.Level { return h.levels }

// Fire never returns an error; a lost datagram must not fail the log call.
func (h *Hook) Fire(e *logrus.Entry) error {
	msg := map[string]any{
		"version":       "1.1",
		"host":          h.hostname,
		"short_message": e.Message,
		"timestamp":     float64(e.Time.UnixNano()) / 1e9,
		"level":         severity(e.Level),
		"_service":      h.service,
	}
	for k, v := range e.Data {
		if k == "id" {
			k = "field_id"
		}
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		msg["_"+k] = v
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	// Fire-and-forget
	_, _ = h.conn.Write(payload)
	return nil
}

func (h *Hook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conn.Close()
}

// severity maps a logrus level onto a syslog severity.
func severity(l logrus.Level) int {
	switch l {
	case logrus.PanicLevel:
		return 0
	case logrus.FatalLevel:
		return 2
	case logrus.ErrorLevel:
		return 3
	case logrus.WarnLevel:
		return 4
	case logrus.InfoLevel:
		return 6
	default:
		return 7
	}
}
