package heartbeat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shaiso/botlink/internal/transport"
)

// beatRecorder считает heartbeat-запросы.
type beatRecorder struct {
	mu       sync.Mutex
	payloads []Payload
	fail     bool
}

func (r *beatRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var p Payload
		json.NewDecoder(req.Body).Decode(&p)

		r.mu.Lock()
		r.payloads = append(r.payloads, p)
		fail := r.fail
		r.mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func (r *beatRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

func (r *beatRecorder) last() (Payload, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.payloads) == 0 {
		return Payload{}, false
	}
	return r.payloads[len(r.payloads)-1], true
}

func newTestMonitor(t *testing.T, rec *beatRecorder, interval time.Duration) *Monitor {
	t.Helper()
	server := httptest.NewServer(rec.handler())
	t.Cleanup(server.Close)

	client := transport.New(transport.Config{
		BaseURL:        server.URL,
		Timeout:        time.Second,
		InitialBackoff: time.Millisecond,
	})
	return New(Config{
		Client:   client,
		WorkerID: "worker-1",
		Interval: interval,
		Attempts: 1,
	})
}

func TestMonitor_SendsPeriodically(t *testing.T) {
	rec := &beatRecorder{}
	monitor := newTestMonitor(t, rec, 20*time.Millisecond)

	monitor.Start(context.Background())
	time.Sleep(110 * time.Millisecond)
	monitor.Stop()

	// Первый сигнал сразу + ~5 тиков; допускаем разброс планировщика.
	got := rec.count()
	if got < 3 {
		t.Errorf("expected at least 3 heartbeats, got %d", got)
	}

	payload, ok := rec.last()
	if !ok {
		t.Fatal("no heartbeat recorded")
	}
	if payload.WorkerID != "worker-1" {
		t.Errorf("expected worker_id=worker-1, got %q", payload.WorkerID)
	}
	if payload.Timestamp == "" {
		t.Error("expected timestamp")
	}
}

func TestMonitor_StopCeasesSends(t *testing.T) {
	rec := &beatRecorder{}
	monitor := newTestMonitor(t, rec, 10*time.Millisecond)

	monitor.Start(context.Background())
	time.Sleep(35 * time.Millisecond)
	monitor.Stop()

	after := rec.count()
	time.Sleep(50 * time.Millisecond)

	if got := rec.count(); got != after {
		t.Errorf("heartbeats continued after Stop: %d -> %d", after, got)
	}
}

func TestMonitor_StopIsIdempotent(t *testing.T) {
	rec := &beatRecorder{}
	monitor := newTestMonitor(t, rec, 10*time.Millisecond)

	monitor.Start(context.Background())
	monitor.Stop()
	monitor.Stop()
	monitor.Stop()
}

func TestMonitor_StopWithoutStart(t *testing.T) {
	rec := &beatRecorder{}
	monitor := newTestMonitor(t, rec, 10*time.Millisecond)

	// Не должно паниковать и не должно зависать.
	monitor.Stop()

	if got := rec.count(); got != 0 {
		t.Errorf("expected no heartbeats, got %d", got)
	}
}

func TestMonitor_StartAfterStopIsNoop(t *testing.T) {
	rec := &beatRecorder{}
	monitor := newTestMonitor(t, rec, 10*time.Millisecond)

	monitor.Stop()
	monitor.Start(context.Background())
	time.Sleep(30 * time.Millisecond)

	if got := rec.count(); got != 0 {
		t.Errorf("monitor is single-use, expected no heartbeats, got %d", got)
	}
}

func TestMonitor_SendFailureIsNotFatal(t *testing.T) {
	rec := &beatRecorder{fail: true}
	monitor := newTestMonitor(t, rec, 15*time.Millisecond)

	monitor.Start(context.Background())
	time.Sleep(60 * time.Millisecond)
	monitor.Stop()

	// Сбои глотаются, цикл продолжает тикать.
	if got := rec.count(); got < 2 {
		t.Errorf("monitor should keep beating through failures, got %d", got)
	}
}
