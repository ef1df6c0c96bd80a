package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"genomed/pkg/client"
)

func TestWaitForDaemon_AnswersWhenUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"stopped","isRunning":false}`))
	}))
	defer srv.Close()

	c := client.New(strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, c.WaitForDaemon(context.Background(), 2*time.Second))
}

func TestWaitForDaemon_TimesOutWhenUnreachable(t *testing.T) {
	// a port nothing listens on
	c := client.New("127.0.0.1:1")

	err := c.WaitForDaemon(context.Background(), 300*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "did not answer")
}
