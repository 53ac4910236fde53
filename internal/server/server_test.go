package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/kyrios-fx/backend/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestNewServer(t *testing.T) {
	tests := []struct {
		name           string
		readHeader     time.Duration
		wantReadHeader time.Duration
	}{
		{name: "configured", readHeader: time.Second, wantReadHeader: time.Second},
		{name: "unset falls back to request timeout", readHeader: 0, wantReadHeader: 4 * time.Second},
		{name: "capped by request timeout", readHeader: time.Minute, wantReadHeader: 4 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{HttpServer: config.HttpServer{
				Port:              "9090",
				Timeout:           4 * time.Second,
				ReadHeaderTimeout: tt.readHeader,
				IdleTimeout:       time.Minute,
				MaxHeaderBytes:    8 << 10,
			}}

			srv := NewServer(cfg, http.NotFoundHandler()).httpServer

			assert.Equal(t, ":9090", srv.Addr)
			assert.Equal(t, tt.wantReadHeader, srv.ReadHeaderTimeout)
			assert.Equal(t, 4*time.Second, srv.ReadTimeout)
			assert.Equal(t, 4*time.Second, srv.WriteTimeout)
			assert.Equal(t, time.Minute, srv.IdleTimeout)
			assert.Equal(t, 8<<10, srv.MaxHeaderBytes)
		})
	}
}
