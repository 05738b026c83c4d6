// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"

	"github.com/keketsolithane/keketso/internal/config"
	"github.com/keketsolithane/keketso/internal/gelf"
	"github.com/sirupsen/logrus"
)

// Service tags every GELF message.
const Service = "keketso"

// New returns a logger writing to out. When cfg.GelfAddr is set entries are
// also shipped over GELF; the returned close func releases that socket.
func New(cfg config.LogConfig, out io.Writer) (*logrus.Logger, func() error, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	switch cfg.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	closer := func() error { return nil }
	if cfg.GelfAddr != "" {
		hook, err := gelf.NewHook(cfg.GelfAddr, Service)
		if err != nil {
			return nil, nil, err
		}
		log.AddHook(hook)
		closer = hook.Close
		log.WithField("addr", cfg.GelfAddr).Info("GELF logging enabled")
	}
	return log, closer, nil
}
