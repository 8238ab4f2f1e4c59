package server

import (
	"sync"

	"github.com/decred/slog"

	"github.com/ethanbrook-dev/pokerroom/pkg/poker"
)

// EventProcessor decouples the engine from the transport: rooms publish
// events into a buffered queue while holding their own lock, and a pool of
// workers fans them out to the Notifier. Publishing never blocks; when the
// queue is full the event is dropped and logged.
type EventProcessor struct {
	log      slog.Logger
	notifier Notifier
	queue    chan poker.RoomEvent
	stopChan chan struct{}
	wg       sync.WaitGroup
	workers  int
	started  bool
	mu       sync.Mutex
}

// NewEventProcessor creates a processor with the given queue depth and
// worker count.
func NewEventProcessor(log slog.Logger, notifier Notifier, queueSize, workerCount int) *EventProcessor {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workerCount <= 0 {
		workerCount = 4
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &EventProcessor{
		log:      log,
		notifier: notifier,
		queue:    make(chan poker.RoomEvent, queueSize),
		stopChan: make(chan struct{}),
		workers:  workerCount,
	}
}

// SetNotifier swaps the delivery target. Must be called before Start.
func (ep *EventProcessor) SetNotifier(n Notifier) {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	ep.notifier = n
}

// Start launches the worker pool. Starting twice is a no-op.
func (ep *EventProcessor) Start() {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	if ep.started {
		return
	}
	ep.started = true
	ep.log.Infof("Starting event processor with %d workers", ep.workers)

	for i := 0; i < ep.workers; i++ {
		ep.wg.Add(1)
		go ep.run(i)
	}
}

// Stop shuts down the worker pool and waits for in-flight deliveries.
func (ep *EventProcessor) Stop() {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	if !ep.started {
		return
	}
	close(ep.stopChan)
	ep.wg.Wait()
	ep.started = false
	ep.log.Infof("Event processor stopped")
}

// Publish enqueues an engine event for delivery. Safe to call from inside
// a room's critical section.
func (ep *EventProcessor) Publish(ev poker.RoomEvent) {
	select {
	case ep.queue <- ev:
	default:
		ep.log.Errorf("Event queue full, dropping %s for room %s", ev.Type, ev.RoomCode)
	}
}

func (ep *EventProcessor) run(id int) {
	defer ep.wg.Done()
	ep.log.Debugf("Event worker %d started", id)

	for {
		select {
		case <-ep.stopChan:
			ep.log.Debugf("Event worker %d stopping", id)
			return
		case ev := <-ep.queue:
			ep.deliver(ev)
		}
	}
}

// deliver routes one event: targeted events go to a single player, the
// rest broadcast to the room.
func (ep *EventProcessor) deliver(ev poker.RoomEvent) {
	n := &Notification{
		Type:     ev.Type,
		RoomCode: ev.RoomCode,
		Payload:  ev.Payload,
	}
	if ev.TargetID != "" {
		ep.notifier.NotifyPlayer(ev.TargetID, n)
		return
	}
	ep.notifier.NotifyRoom(ev.RoomCode, n)
}
