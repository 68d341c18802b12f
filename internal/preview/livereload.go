package preview

import (
	"bufio"
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/grapesite/internal/logfields"
)

const (
	liveReloadPath   = "/livereload"
	liveReloadScript = "/livereload.js"
	heartbeatEvery   = 30 * time.Second
	maxInjectSize    = 512 * 1024
)

// liveReloadHub streams the ID of each successful build to connected browsers
// over server-sent events.
type liveReloadHub struct {
	mu      sync.Mutex
	nextID  int
	clients map[int]*lrClient
	closed  bool
	lastID  string
}

type lrClient struct {
	ch   chan string
	done chan struct{}
}

func newLiveReloadHub() *liveReloadHub {
	return &liveReloadHub{clients: map[int]*lrClient{}}
}

// ServeHTTP is the SSE endpoint. A new client first receives the current build
// ID, then one event per later build.
func (h *liveReloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		http.Error(w, "livereload shutting down", http.StatusServiceUnavailable)
		return
	}
	id := h.nextID
	h.nextID++
	client := &lrClient{ch: make(chan string, 8), done: make(chan struct{})}
	h.clients[id] = client
	current := h.lastID
	h.mu.Unlock()
	defer h.remove(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	bw := bufio.NewWriter(w)
	send := func(s string) bool {
		if _, err := bw.WriteString(s); err != nil {
			slog.Debug("livereload write", logfields.Error(err))
			return false
		}
		if err := bw.Flush(); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	first := ": connected\n\n"
	if current != "" {
		first += event(current)
	}
	if !send(first) {
		return
	}

	hb := time.NewTicker(heartbeatEvery)
	defer hb.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-client.done:
			return
		case <-hb.C:
			if !send(": ping\n\n") {
				return
			}
		case buildID := <-client.ch:
			if !send(event(buildID)) {
				return
			}
		}
	}
}

func event(buildID string) string {
	return "data: {\"build\":" + strconv.Quote(buildID) + "}\n\n"
}

func (h *liveReloadHub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.done)
	}
}

// Broadcast announces a new build. Clients that cannot keep up are dropped.
func (h *liveReloadHub) Broadcast(buildID string) {
	h.mu.Lock()
	if h.closed || buildID == "" || buildID == h.lastID {
		h.mu.Unlock()
		return
	}
	h.lastID = buildID
	var slow []int
	for id, c := range h.clients {
		select {
		case c.ch <- buildID:
		default:
			slow = append(slow, id)
		}
	}
	n := len(h.clients)
	h.mu.Unlock()

	for _, id := range slow {
		h.remove(id)
	}
	slog.Debug("livereload broadcast", logfields.BuildID(buildID), logfields.Count(n), slog.Int("dropped", len(slow)))
}

// Shutdown disconnects every client and refuses new ones.
func (h *liveReloadHub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.done)
	}
}

// liveReloadJS reloads the page whenever the announced build changes.
const liveReloadJS = `(() => {
  if (window.__GRAPESITE_LR__) return;
  window.__GRAPESITE_LR__ = true;
  function connect() {
    const es = new EventSource('` + liveReloadPath + `');
    let current = null;
    es.onmessage = (e) => {
      try {
        const p = JSON.parse(e.data);
        if (current === null) { current = p.build; return; }
        if (p.build && p.build !== current) { location.reload(); }
      } catch (_) {}
    };
    es.onerror = () => { es.close(); setTimeout(connect, 2000); };
  }
  connect();
})();
`

func serveLiveReloadJS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(liveReloadJS))
}

// injectLiveReload adds the client script before </body> of HTML pages.
func injectLiveReload(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if r.Method != http.MethodGet || !(p == "" || strings.HasSuffix(p, "/") || strings.HasSuffix(p, ".html")) {
			next.ServeHTTP(w, r)
			return
		}
		inj := &injector{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(inj, r)
		inj.finish()
	})
}

// injector buffers an HTML response so the script tag can be inserted. Non-HTML
// and oversized responses pass through unchanged.
type injector struct {
	http.ResponseWriter
	status      int
	buf         bytes.Buffer
	wroteHeader bool
	passthrough bool
}

func (i *injector) WriteHeader(code int) {
	i.status = code
	if i.passthrough {
		i.ResponseWriter.WriteHeader(code)
		i.wroteHeader = true
	}
}

func (i *injector) Write(data []byte) (int, error) {
	if !i.passthrough && i.buf.Len() == 0 {
		ct := i.Header().Get("Content-Type")
		if i.status != http.StatusOK || (ct != "" && !strings.Contains(ct, "text/html")) {
			i.startPassthrough()
		}
	}
	if !i.passthrough && i.buf.Len()+len(data) > maxInjectSize {
		i.startPassthrough()
		if _, err := i.ResponseWriter.Write(i.buf.Bytes()); err != nil {
			return 0, err
		}
		i.buf.Reset()
	}
	if i.passthrough {
		return i.ResponseWriter.Write(data)
	}
	return i.buf.Write(data)
}

func (i *injector) startPassthrough() {
	i.passthrough = true
	if !i.wroteHeader {
		i.ResponseWriter.WriteHeader(i.status)
		i.wroteHeader = true
	}
}

func (i *injector) finish() {
	if i.passthrough {
		return
	}
	body := i.buf.Bytes()
	tag := []byte(`<script src="` + liveReloadScript + `"></script>`)
	if idx := bytes.LastIndex(body, []byte("</body>")); idx >= 0 {
		body = append(body[:idx:idx], append(tag, body[idx:]...)...)
	} else if len(body) > 0 {
		body = append(body, tag...)
	}
	i.Header().Del("Content-Length")
	i.ResponseWriter.WriteHeader(i.status)
	_, _ = i.ResponseWriter.Write(body)
}
