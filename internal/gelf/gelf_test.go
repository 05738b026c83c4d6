package gelf

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listen(t *testing.T) net.PacketConn {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { pc.Close() })
	return pc
}

func readMessage(t *testing.T, pc net.PacketConn) map[string]any {
	t.Helper()
	require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 8192)
	n, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(buf[:n], &msg))
	return msg
}

func TestHook_SendsEntry(t *testing.T) {
	pc := listen(t)
	hook, err := NewHook(pc.LocalAddr().String(), "keketso")
	require.NoError(t, err)
	defer hook.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)
	log.AddHook(hook)

	log.WithFields(logrus.Fields{"form": "contact", "id": "abc"}).
		WithError(errors.New("boom")).
		Warn("submission rejected by store")

	msg := readMessage(t, pc)
	assert.Equal(t, "1.1", msg["version"])
	assert.Equal(t, "submission rejected by store", msg["short_message"])
	assert.Equal(t, float64(4), msg["level"])
	assert.Equal(t, "keketso", msg["_service"])
	assert.Equal(t, "contact", msg["_form"])
	assert.Equal(t, "abc", msg["_field_id"])
	assert.Equal(t, "boom", msg["_error"])
	assert.NotContains(t, msg, "_id")
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, 3, severity(logrus.ErrorLevel))
	assert.Equal(t, 6, severity(logrus.InfoLevel))
	assert.Equal(t, 7, severity(logrus.DebugLevel))
	assert.Equal(t, 7, severity(logrus.TraceLevel))
}

func TestNewHook_BadAddr(t *testing.T) {
	_, err := NewHook("not an address", "keketso")
	assert.Error(t, err)
}
