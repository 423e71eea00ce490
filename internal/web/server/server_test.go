package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("explorer"))
	})
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(&Config{Address: ":0"})
	assert.Error(t, err)

	s, err := New(DefaultConfig(testHandler()))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", s.Addr())
	assert.Equal(t, 15*time.Second, s.httpServer.ReadTimeout)
}

func TestGracefulShutdown_Run(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cfg := DefaultConfig(testHandler())
	cfg.Address = "127.0.0.1:0"
	cfg.Logger = zap.New(core)

	s, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Listen())

	gs := NewGracefulShutdown(s, &ShutdownConfig{Timeout: time.Second})
	var hooks []string
	gs.RegisterHook(func(ctx context.Context) error {
		hooks = append(hooks, "close source")
		return nil
	})
	gs.RegisterHook(func(ctx context.Context) error {
		hooks = append(hooks, "close cache")
		return errors.New("already closed")
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Run(ctx) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get(s.URL())
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "explorer", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.Equal(t, []string{"close source", "close cache"}, hooks)
	assert.Equal(t, 1, logs.FilterMessage("shutdown hook failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("listening").Len())
}

func TestGracefulShutdown_ListenError(t *testing.T) {
	first, err := New(&Config{Address: "127.0.0.1:0", Handler: testHandler()})
	require.NoError(t, err)
	require.NoError(t, first.Listen())
	defer first.listener.Close()

	second, err := New(&Config{Address: first.Addr(), Handler: testHandler()})
	require.NoError(t, err)

	err = NewGracefulShutdown(second, nil).Run(context.Background())
	assert.Error(t, err)
}
