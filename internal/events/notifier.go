package events

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/pinchpop/backend/internal/config"
)

const queueDepth = 64

// Notifier fans gameplay events out to the sink: one bounded queue and one
// worker goroutine per enabled kind. Emitting never blocks — a full queue
// drops the envelope with a log line. All methods are safe on a nil
// receiver, so game code emits unconditionally whether or not a sink is
// configured.
type Notifier struct {
	client     *Client
	minCluster int
	verbose    bool

	mu     sync.Mutex
	queues map[Kind]chan Envelope
	closed bool
	wg     sync.WaitGroup
}

// NewNotifier builds a notifier delivering through client, with kinds
// filtered by cfg.EventKinds (csv; empty enables all). Returns nil when no
// client is given, so an unconfigured sink costs nothing at emit time.
func NewNotifier(client *Client, cfg *config.Config) *Notifier {
	if client == nil {
		return nil
	}

	enabled := make(map[Kind]bool)
	if csv := strings.TrimSpace(cfg.EventKinds); csv != "" {
		for _, part := range strings.Split(csv, ",") {
			enabled[Kind(strings.TrimSpace(part))] = true
		}
	} else {
		for _, k := range AllKinds() {
			enabled[k] = true
		}
	}

	n := &Notifier{
		client:     client,
		minCluster: cfg.MinNotifyCluster,
		verbose:    cfg.VerboseEvents,
		queues:     make(map[Kind]chan Envelope),
	}
	for _, k := range AllKinds() {
		if !enabled[k] {
			continue
		}
		q := make(chan Envelope, queueDepth)
		n.queues[k] = q
		n.wg.Add(1)
		go n.worker(k, q)
	}
	return n
}

func (n *Notifier) worker(kind Kind, q chan Envelope) {
	defer n.wg.Done()
	for env := range q {
		n.deliver(kind, env)
	}
}

// deliver posts one envelope, absorbing every failure mode including a
// panicking transport. Nothing escapes to the worker loop.
func (n *Notifier) deliver(kind Kind, env Envelope) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[EVENTS] %s delivery panic: %v", kind, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := n.client.Post(ctx, env)
	if err != nil {
		log.Printf("[EVENTS] %s delivery failed: %v", kind, err)
		return
	}
	if n.verbose {
		log.Printf("[EVENTS] %s delivered (id=%s)", kind, id)
	}
}

func (n *Notifier) emit(kind Kind, data any) {
	if n == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	q, ok := n.queues[kind]
	if !ok {
		// Kind filtered out by config.
		return
	}
	env := Envelope{EventType: kind, Timestamp: time.Now().UnixMilli(), Data: data}
	select {
	case q <- env:
		if n.verbose {
			log.Printf("[EVENTS] queued %s", kind)
		}
	default:
		log.Printf("[EVENTS] %s queue full, dropping event", kind)
	}
}

// Draw reports an in-progress pull. The emitting loop throttles these.
func (n *Notifier) Draw(d DrawData) {
	n.emit(KindDraw, d)
}

// Fire reports a released shot.
func (n *Notifier) Fire(d FireData) {
	n.emit(KindFire, d)
}

// Collision reports the first bubble struck by a shot.
func (n *Notifier) Collision(d CollisionData) {
	n.emit(KindCollision, d)
}

// Eliminated reports a popped cluster. Clusters under the notify floor stay
// local and emit nothing.
func (n *Notifier) Eliminated(d EliminatedData) {
	if n == nil || d.Count < n.minCluster {
		return
	}
	n.emit(KindEliminated, d)
}

// Win reports a cleared board.
func (n *Notifier) Win(d WinData) {
	n.emit(KindWin, d)
}

// Close shuts the queues and waits for in-flight deliveries to finish.
// Emits arriving after Close are dropped silently.
func (n *Notifier) Close() {
	if n == nil {
		return
	}
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	for _, q := range n.queues {
		close(q)
	}
	n.mu.Unlock()
	n.wg.Wait()
}
