package db

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/keketsolithane/keketso/internal/oxidb"
	"github.com/sirupsen/logrus"
)

const dialTimeout = 5 * time.Second

// Pool is a round-robin connection pool for OxiDB with auto-reconnect.
type Pool struct {
	host    string
	port    int
	log     logrus.FieldLogger
	clients []*oxidb.Client
	mu      sync.RWMutex
	idx     uint64
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewPool opens size connections and starts pinging them every interval.
func NewPool(ctx context.Context, host string, port, size int, interval time.Duration, log logrus.FieldLogger) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("pool: size must be at least 1, got %d", size)
	}
	p := &Pool{
		host:    host,
		port:    port,
		log:     log,
		clients: make([]*oxidb.Client, size),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		c, err := oxidb.Connect(ctx, host, port, dialTimeout)
		if err != nil {
			p.closeClients()
			return nil, fmt.Errorf("pool: connect client %d: %w", i, err)
		}
		p.clients[i] = c
	}
	go p.keepalive(interval)
	return p, nil
}

// Get returns the next client in round-robin order. A client whose
// connection was dropped is replaced first; if the redial fails the broken
// client is returned and its requests fail with oxidb.ErrBroken.
func (p *Pool) Get() *oxidb.Client {
	n := atomic.AddUint64(&p.idx, 1)
	i := int(n % uint64(len(p.clients)))
	p.mu.RLock()
	c := p.clients[i]
	p.mu.RUnlock()
	if c.Broken() {
		if fresh := p.reconnect(i, c); fresh != nil {
			return fresh
		}
	}
	return c
}

// Size is the number of connections held.
func (p *Pool) Size() int { return len(p.clients) }

// reconnect swaps old in slot i for a fresh connection. If another caller
// already replaced it, the current client is returned instead.
func (p *Pool) reconnect(i int, old *oxidb.Client) *oxidb.Client {
	select {
	case <-p.stop:
		return nil
	default:
	}
	c, err := oxidb.Connect(context.Background(), p.host, p.port, dialTimeout)
	if err != nil {
		p.log.WithError(err).WithField("client", i).Warn("pool: reconnect failed")
		return nil
	}
	p.mu.Lock()
	cur := p.clients[i]
	if cur != old {
		p.mu.Unlock()
		c.Close()
		return cur
	}
	p.clients[i] = c
	p.mu.Unlock()
	old.Close()
	return c
}

func (p *Pool) keepalive(interval time.Duration) {
	defer close(p.done)
	if interval <= 0 {
		<-p.stop
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			for i := range p.clients {
				ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
				p.mu.RLock()
				c := p.clients[i]
				p.mu.RUnlock()
				if c.Broken() {
					cancel()
					p.log.WithField("client", i).Warn("pool: connection dropped, reconnecting")
					p.reconnect(i, c)
					continue
				}
				_, err := c.Ping(ctx)
				cancel()
				if err != nil {
					p.log.WithError(err).WithField("client", i).Warn("pool: ping failed, reconnecting")
					p.reconnect(i, c)
				}
			}
		}
	}
}

func (p *Pool) closeClients() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.clients {
		if c != nil {
			c.Close()
		}
	}
}

// Close stops the keepalive loop and closes all connections.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.stop)
		<-p.done
		p.closeClients()
	})
}
