package resources_test

import (
	"io"
	"net"
	nethttp "net/http"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/indigo-web/lantern"
	"github.com/indigo-web/lantern/config"
	"github.com/indigo-web/lantern/resources"
	"github.com/indigo-web/lantern/router/inbuilt"
	"github.com/stretchr/testify/require"
)

const workDelay = 500 * time.Millisecond

func run(t *testing.T) string {
	cfg := config.Default()
	cfg.Loop.Workers = 1

	app := lantern.New("127.0.0.1:0").
		Tune(cfg).
		Logger(hclog.NewNullLogger())

	r := resources.Register(inbuilt.New(),
		resources.WithWorkDelay(workDelay),
		resources.WithMetrics(app.Metrics()),
	)

	bound := make(chan net.Addr, 1)
	app.OnBind(func(addrs []net.Addr) {
		bound <- addrs[0]
	})

	stopped := make(chan error, 1)
	go func() {
		stopped <- app.Serve(r)
	}()

	t.Cleanup(func() {
		app.Stop()
		select {
		case err := <-stopped:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			require.FailNow(t, "server didn't stop")
		}
	})

	select {
	case addr := <-bound:
		return "http://" + addr.String()
	case err := <-stopped:
		require.FailNow(t, "server failed to start", err)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "server didn't bind")
	}

	return ""
}

func read(t *testing.T, resp *nethttp.Response, err error) (int, string) {
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestResources(t *testing.T) {
	addr := run(t)
	client := &nethttp.Client{Timeout: 5 * time.Second}

	t.Run("string", func(t *testing.T) {
		const payload = `{"firstName": "John","lastName": "Smith","age": 25}`
		code, body := read(t, client.Post(addr+"/string", "text/plain", strings.NewReader(payload)))
		require.Equal(t, 200, code)
		require.Equal(t, payload, body)
	})

	t.Run("json", func(t *testing.T) {
		code, body := read(t, client.Post(
			addr+"/json", "application/json",
			strings.NewReader(`{"firstName": "John","lastName": "Smith","age": 25}`),
		))
		require.Equal(t, 200, code)
		require.Equal(t, "John Smith", body)
	})

	t.Run("json missing field", func(t *testing.T) {
		code, body := read(t, client.Post(
			addr+"/json", "application/json",
			strings.NewReader(`{"firstName": "John","age": 25}`),
		))
		require.Equal(t, 400, code)
		require.Equal(t, "missing required field: lastName", body)
	})

	t.Run("json empty name", func(t *testing.T) {
		code, body := read(t, client.Post(
			addr+"/json", "application/json",
			strings.NewReader(`{"firstName": "","lastName": "Smith"}`),
		))
		require.Equal(t, 200, code)
		require.Equal(t, " Smith", body)
	})

	t.Run("json malformed", func(t *testing.T) {
		code, body := read(t, client.Post(addr+"/json", "application/json", strings.NewReader(`{"firstName`)))
		require.Equal(t, 400, code)
		require.NotEmpty(t, body)
	})

	t.Run("match", func(t *testing.T) {
		code, body := read(t, client.Get(addr+"/match/123"))
		require.Equal(t, 200, code)
		require.Equal(t, "123", body)

		code, _ = read(t, client.Get(addr+"/match/abc"))
		require.Equal(t, 404, code)
	})

	t.Run("info", func(t *testing.T) {
		req, err := nethttp.NewRequest(nethttp.MethodGet, addr+"/info", nil)
		require.NoError(t, err)
		req.Header.Set("X-Hello", "world")

		code, body := read(t, client.Do(req))
		require.Equal(t, 200, code)
		require.True(t, strings.HasPrefix(body, "<h1>Request from 127.0.0.1 ("), body)
		require.Contains(t, body, "GET /info HTTP/1.1<br>")
		require.Contains(t, body, "X-Hello: world<br>")
	})

	t.Run("work does not delay other requests", func(t *testing.T) {
		type result struct {
			body    string
			elapsed time.Duration
		}

		start := time.Now()
		work := make(chan result, 1)
		go func() {
			resp, err := client.Get(addr + "/work")
			if err != nil {
				work <- result{body: err.Error()}
				return
			}
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			work <- result{string(body), time.Since(start)}
		}()

		// let the /work request reach the handler first
		time.Sleep(50 * time.Millisecond)
		code, body := read(t, client.Get(addr+"/match/42"))
		require.Equal(t, 200, code)
		require.Equal(t, "42", body)
		require.Less(t, time.Since(start), workDelay)

		res := <-work
		require.Equal(t, "Work done", res.body)
		require.GreaterOrEqual(t, res.elapsed, workDelay)
	})

	t.Run("metrics", func(t *testing.T) {
		code, body := read(t, client.Get(addr+"/metrics"))
		require.Equal(t, 200, code)
		require.Contains(t, body, "lantern_http_exchanges_total")
	})
}
