package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewClient(t *testing.T) {
	live := miniredis.RunT(t)
	stopped := miniredis.RunT(t)
	stoppedAddr := stopped.Addr()
	stopped.Close()

	tests := []struct {
		name    string
		url     string
		wantErr bool
		wantDB  int
		dial    time.Duration
	}{
		{name: "default db", url: "redis://" + live.Addr(), dial: dialTimeout},
		{name: "db from path", url: "redis://" + live.Addr() + "/3", wantDB: 3, dial: dialTimeout},
		{name: "dial timeout from query", url: "redis://" + live.Addr() + "?dial_timeout=2s", dial: 2 * time.Second},
		{name: "malformed url", url: "://bad-url", wantErr: true},
		{name: "server down", url: "redis://" + stoppedAddr, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), tt.url)
			if tt.wantErr {
				if err == nil {
					client.Close()
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			t.Cleanup(func() { client.Close() })

			opts := client.Options()
			if opts.DB != tt.wantDB {
				t.Errorf("db = %d, want %d", opts.DB, tt.wantDB)
			}
			if opts.DialTimeout != tt.dial {
				t.Errorf("dial timeout = %v, want %v", opts.DialTimeout, tt.dial)
			}
		})
	}
}

func TestPingReportsUnreachableServer(t *testing.T) {
	s := miniredis.RunT(t)
	client, err := NewClient(context.Background(), "redis://"+s.Addr())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	if err := Ping(context.Background(), client); err != nil {
		t.Fatalf("ping while up: %v", err)
	}

	s.Close()
	if err := Ping(context.Background(), client); err == nil {
		t.Fatal("expected ping to fail once the server is gone")
	}
}
