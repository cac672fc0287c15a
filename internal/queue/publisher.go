package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "errors"
    "log"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Dial limits for the publisher.  A failed dial is not retried until
// RedialCooldown has passed; publishes in between fail at once.
const (
    DialTimeout    = 2 * time.Second
    RedialCooldown = 5 * time.Second
)

// ErrBrokerUnavailable is returned while the publisher is cooling down
// after a failed dial.
var ErrBrokerUnavailable = errors.New("broker unavailable")

// Publisher publishes OrderEvents to the orders queue over one long-lived
// connection.  The connection is opened lazily and reopened after a
// failure.  Publish calls are serialized.
type Publisher struct {
    url   string
    queue string
    dial  func(url string) (*amqp.Connection, error)
    now   func() time.Time

    mu      sync.Mutex
    conn    *amqp.Connection
    ch      *amqp.Channel
    retryAt time.Time
    lastErr error
}

// NewPublisher returns a Publisher for url.  No connection is made until
// the first Publish.
func NewPublisher(url string) *Publisher {
    return &Publisher{url: url, queue: OrdersQueueName, dial: dialBroker, now: time.Now}
}

func dialBroker(url string) (*amqp.Connection, error) {
    return amqp.DialConfig(url, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(DialTimeout),
    })
}

// Publish sends ev as a persistent JSON message.  Errors are returned so
// callers can log them; the next call redials.
func (p *Publisher) Publish(ctx context.Context, ev OrderEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    p.mu.Lock()
    defer p.mu.Unlock()

    if err := p.ensureChannel(); err != nil {
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Type:         ev.Kind,
        Body:         body,
    }
    if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
        p.reset()
        return fmt.Errorf("publish: %w", err)
    }
    return nil
}

// Close releases the connection, if any.
func (p *Publisher) Close() {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.reset()
}

func (p *Publisher) ensureChannel() error {
    if p.ch != nil && !p.ch.IsClosed() {
        return nil
    }
    p.reset()
    if now := p.now(); now.Before(p.retryAt) {
        return fmt.Errorf("%w until %s: %v", ErrBrokerUnavailable, p.retryAt.Format(time.RFC3339), p.lastErr)
    }
    conn, err := p.dial(p.url)
    if err != nil {
        p.retryAt = p.now().Add(RedialCooldown)
        p.lastErr = err
        return fmt.Errorf("dial broker: %w", err)
    }
    p.retryAt, p.lastErr = time.Time{}, nil
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return fmt.Errorf("channel open: %w", err)
    }
    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return fmt.Errorf("queue declare: %w", err)
    }
    p.conn, p.ch = conn, ch
    log.Printf("order-publisher: connected, queue=%s", p.queue)
    return nil
}

func (p *Publisher) reset() {
    if p.ch != nil {
        _ = p.ch.Close()
        p.ch = nil
    }
    if p.conn != nil {
        _ = p.conn.Close()
        p.conn = nil
    }
}
