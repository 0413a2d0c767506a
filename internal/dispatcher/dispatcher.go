package dispatcher

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/walkthru-dev/walkthru/db"
	"github.com/walkthru-dev/walkthru/internal/models"
	"github.com/walkthru-dev/walkthru/internal/services"
)

// Notice is one assignment-created event awaiting push fan-out.
type Notice struct {
	UserID       uint
	PropertyName string
}

type SendFunc func(sub models.PushSubscription, msg services.PushMessage) error

type Dispatcher struct {
	queue       chan Notice
	send        SendFunc
	maxAttempts int
	backoff     time.Duration

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher initializes a new Dispatcher instance
func NewDispatcher() *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		queue:       make(chan Notice, 64),
		send:        services.SendPush,
		maxAttempts: 3,
		backoff:     2 * time.Second,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the worker goroutines consuming the notice queue
func (d *Dispatcher) Start(workers int) {
	log.Printf("Starting notification dispatcher with %d workers", workers)

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
}

// Stop gracefully shuts down the workers and drains nothing further
func (d *Dispatcher) Stop() {
	log.Println("Stopping notification dispatcher...")
	d.cancel()
	d.wg.Wait()
	log.Println("Notification dispatcher stopped")
}

// Enqueue queues an assignment notification. Delivery is best-effort: a
// full queue drops the notice with a warning rather than blocking the
// request that created the assignment.
func (d *Dispatcher) Enqueue(userID uint, propertyName string) {
	notice := Notice{UserID: userID, PropertyName: propertyName}

	select {
	case d.queue <- notice:
	default:
		log.Printf("Notification queue full, dropping notice for user %d (%s)", userID, propertyName)
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return
		case notice := <-d.queue:
			d.deliver(notice)
		}
	}
}

// deliver fans a notice out to every registered endpoint of the assigned
// user. Failures are retried a bounded number of times, then logged and
// swallowed; they never reach the caller that created the assignment.
func (d *Dispatcher) deliver(notice Notice) {
	var subscriptions []models.PushSubscription

	if err := db.DB.Where("user_id = ?", notice.UserID).Find(&subscriptions).Error; err != nil {
		log.Printf("Failed to load push subscriptions for user %d: %v", notice.UserID, err)
		return
	}

	if len(subscriptions) == 0 {
		log.Printf("No push subscriptions registered for user %d, skipping notification", notice.UserID)
		return
	}

	msg := services.PushMessage{
		Title: "New inspection assignment",
		Body:  "You have been assigned to inspect " + notice.PropertyName,
	}

	for _, sub := range subscriptions {
		d.sendWithRetry(sub, msg)
	}
}

func (d *Dispatcher) sendWithRetry(sub models.PushSubscription, msg services.PushMessage) {
	var err error

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if err = d.send(sub, msg); err == nil {
			return
		}

		if attempt < d.maxAttempts {
			select {
			case <-d.ctx.Done():
				return
			case <-time.After(d.backoff * time.Duration(attempt)):
			}
		}
	}

	log.Printf("Push delivery to subscription %d failed after %d attempts: %v", sub.ID, d.maxAttempts, err)
}

// Global dispatcher instance
var globalDispatcher *Dispatcher

// Initialize creates and starts the global dispatcher
func Initialize(workers int) {
	globalDispatcher = NewDispatcher()
	globalDispatcher.Start(workers)
}

// Shutdown stops the global dispatcher
func Shutdown() {
	if globalDispatcher != nil {
		globalDispatcher.Stop()
	}
}

// Enqueue queues a notice on the global dispatcher
func Enqueue(userID uint, propertyName string) {
	if globalDispatcher != nil {
		globalDispatcher.Enqueue(userID, propertyName)
	}
}
