package db

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cessadesk/cessadesk/internal/oxidb"
)

const dialTimeout = 5 * time.Second

// Pool is a round-robin connection pool for OxiDB with auto-reconnect.
type Pool struct {
	host     string
	port     int
	clients  []*oxidb.Client
	mu       []sync.RWMutex
	idx      uint64
	interval time.Duration
	stop     chan struct{}
	once     sync.Once
}

// NewPool creates a pool of n OxiDB connections and pings them every
// interval, reconnecting the ones that fail.
func NewPool(host string, port, size int, interval time.Duration) (*Pool, error) {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		host:     host,
		port:     port,
		clients:  make([]*oxidb.Client, size),
		mu:       make([]sync.RWMutex, size),
		interval: interval,
		stop:     make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		c, err := oxidb.Connect(host, port, dialTimeout)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("pool: connect client %d: %w", i, err)
		}
		p.clients[i] = c
	}
	if interval > 0 {
		go p.keepalive()
	}
	return p, nil
}

// Get returns the next client in round-robin order.
func (p *Pool) Get() *oxidb.Client {
	n := atomic.AddUint64(&p.idx, 1)
	i := int(n % uint64(len(p.clients)))
	p.mu[i].RLock()
	defer p.mu[i].RUnlock()
	return p.clients[i]
}

// Ping checks one connection.
func (p *Pool) Ping(ctx context.Context) error {
	_, err := p.Get().Ping(ctx)
	return err
}

func (p *Pool) reconnect(i int) {
	p.mu[i].Lock()
	defer p.mu[i].Unlock()
	if p.clients[i] != nil {
		p.clients[i].Close()
	}
	c, err := oxidb.Connect(p.host, p.port, dialTimeout)
	if err != nil {
		log.Printf("pool: reconnect client %d failed: %v", i, err)
		return
	}
	p.clients[i] = c
}

func (p *Pool) keepalive() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			for i := range p.clients {
				p.mu[i].RLock()
				c := p.clients[i]
				p.mu[i].RUnlock()
				ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
				_, err := c.Ping(ctx)
				cancel()
				if err != nil {
					log.Printf("pool: client %d ping failed, reconnecting: %v", i, err)
					p.reconnect(i)
				}
			}
		}
	}
}

// Close closes all connections.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.stop)
		for _, c := range p.clients {
			if c != nil {
				c.Close()
			}
		}
	})
}
