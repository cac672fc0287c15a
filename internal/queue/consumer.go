package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "log"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// KitchenLogFile is the file order events are appended to, relative to
// the log directory.
const KitchenLogFile = "orders.log"

// StartKitchenLog connects to the broker, declares the orders queue
// (durable), and appends each consumed event to dir/orders.log as one
// human-friendly line.  It reconnects with backoff and returns only when
// ctx is cancelled.  Undecodable messages are rejected without requeue so
// the loop never spins on a poison message.
func StartKitchenLog(ctx context.Context, url, dir string) error {
    backoff := time.Second
    for {
        if err := ctx.Err(); err != nil {
            return err
        }
        conn, err := dialBroker(url)
        if err != nil {
            log.Printf("kitchen-log: failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleepCtx(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = consumeLoop(ctx, conn, dir)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Printf("kitchen-log: consume loop ended: %v; reconnecting", err)
        if !sleepCtx(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, dir string) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("kitchen-log: set QoS failed: %v", err)
    }
    if _, err := ch.QueueDeclare(OrdersQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(OrdersQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := appendEvent(dir, d.Body); err != nil {
                log.Printf("kitchen-log: handle message failed: %v", err)
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func appendEvent(dir string, body []byte) error {
    var ev OrderEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", dir, err)
    }
    f, err := os.OpenFile(filepath.Join(dir, KitchenLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    return WriteLine(f, ev)
}

// WriteLine formats ev as a single kitchen log line.
func WriteLine(w io.Writer, ev OrderEvent) error {
    var line string
    switch ev.Kind {
    case RowCreated, RowUpdated:
        note := ""
        if ev.Note != nil {
            note = *ev.Note
        }
        line = fmt.Sprintf("[%s] %s | row_id=%d | table=%d | dish=%q | price=%.2f | note=%q | by=%s(%s)\n",
            ev.OccurredAt, ev.Kind, ev.RowID, ev.TableNumber, ev.Name, ev.Price, note, ev.Actor, ev.Role)
    case RowDeleted:
        line = fmt.Sprintf("[%s] %s | row_id=%d | table=%d | by=%s(%s)\n",
            ev.OccurredAt, ev.Kind, ev.RowID, ev.TableNumber, ev.Actor, ev.Role)
    case TableCreated:
        line = fmt.Sprintf("[%s] %s | table_id=%d | position=%v | by=%s(%s)\n",
            ev.OccurredAt, ev.Kind, ev.TableID, ev.Position, ev.Actor, ev.Role)
    default:
        return fmt.Errorf("unknown event kind %q", ev.Kind)
    }
    _, err := io.WriteString(w, line)
    return err
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
