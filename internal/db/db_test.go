package db

import (
	"context"
	"testing"

	"github.com/cessadesk/cessadesk/internal/oxidb/oxidbtest"
)

func TestPoolRoundRobin(t *testing.T) {
	srv := oxidbtest.Start(t)
	p, err := NewPool(srv.Host(), srv.Port(), 3, 0)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	defer p.Close()

	seen := map[any]bool{}
	for i := 0; i < 3; i++ {
		seen[p.Get()] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct clients, got %d", len(seen))
	}
	if err := p.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestPoolReconnect(t *testing.T) {
	srv := oxidbtest.Start(t)
	p, err := NewPool(srv.Host(), srv.Port(), 1, 0)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	defer p.Close()

	p.Get().Close()
	if err := p.Ping(context.Background()); err == nil {
		t.Fatal("expected ping on closed client to fail")
	}
	p.reconnect(0)
	if err := p.Ping(context.Background()); err != nil {
		t.Fatalf("ping after reconnect: %v", err)
	}
}

func TestPoolConnectFailure(t *testing.T) {
	if _, err := NewPool("127.0.0.1", 1, 1, 0); err == nil {
		t.Fatal("expected connect error")
	}
}
