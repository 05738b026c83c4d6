package logging

import (
	"bytes"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/keketsolithane/keketso/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, closeFn, err := New(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	defer closeFn()

	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	log.Info("dropped")
	log.WithField("form", "quote").Warn("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "quote", entry["form"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := New(config.LogConfig{Level: "info", Format: "text"}, &buf)
	require.NoError(t, err)

	log.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNew_Invalid(t *testing.T) {
	_, _, err := New(config.LogConfig{Level: "loud", Format: "text"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, _, err = New(config.LogConfig{Level: "info", Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNew_Gelf(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	var buf bytes.Buffer
	log, closeFn, err := New(config.LogConfig{Level: "info", Format: "text", GelfAddr: pc.LocalAddr().String()}, &buf)
	require.NoError(t, err)
	defer closeFn()

	require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
	b := make([]byte, 4096)
	n, _, err := pc.ReadFrom(b)
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(b[:n], &msg))
	assert.Equal(t, "GELF logging enabled", msg["short_message"])
	assert.Equal(t, Service, msg["_service"])
	assert.NotNil(t, log)
}
