package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"booking-api/internal/shared/config"
	"booking-api/internal/shared/logger"
)

// Client is a resilient RabbitMQ connector with auto-reconnect and topology
// setup. Its publish channel runs in confirm mode: every publish gets a
// broker ack or nack, and mandatory messages the broker cannot route come
// back through the return listener.
type Client struct {
	url    string
	cfg    config.Config
	logger *logger.Logger
	logCtx context.Context // carries context across reconnects

	mu      sync.RWMutex
	conn    *amqp.Connection
	pubChan *amqp.Channel

	returns *returnRegistry

	closed    chan struct{}
	reconnect chan struct{}
}

// Connect establishes the connection, declares the booking topology, and
// starts a background watcher that reconnects on failures.
func Connect(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/",
		cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)

	client := &Client{
		url:       url,
		cfg:       *cfg,
		logger:    log,
		logCtx:    context.WithoutCancel(ctx), // avoid ctx cancel on reconnects
		returns:   newReturnRegistry(),
		closed:    make(chan struct{}),
		reconnect: make(chan struct{}, 1),
	}

	// initial connect (single attempt; further retries happen in the watcher)
	if err := client.connectOnce(ctx); err != nil {
		return nil, err
	}

	go client.watch()

	return client, nil
}

var errNotConnected = errors.New("rabbitmq: connection is not open")

// publishDeferred sends one mandatory, confirm-tracked message to the booking
// exchange and returns the pending confirmation.
func (client *Client) publishDeferred(ctx context.Context, pub amqp.Publishing) (*amqp.DeferredConfirmation, error) {
	client.mu.RLock()
	conn := client.conn
	ch := client.pubChan
	client.mu.RUnlock()

	if conn == nil || conn.IsClosed() {
		return nil, errNotConnected
	}
	if ch == nil || ch.IsClosed() {
		return nil, errors.New("rabbitmq: publish channel is not open")
	}

	// mandatory: unroutable messages must come back, not vanish
	return ch.PublishWithDeferredConfirmWithContext(ctx,
		client.cfg.RabbitMQ.Exchange, client.cfg.RabbitMQ.RoutingKey, true, false, pub)
}

// Close gracefully stops the watcher and closes AMQP resources.
func (client *Client) Close() {
	select {
	case <-client.closed:
		// already closed
	default:
		close(client.closed)
	}

	client.mu.Lock()
	if client.pubChan != nil {
		_ = client.pubChan.Close()
		client.pubChan = nil
	}
	if client.conn != nil {
		_ = client.conn.Close()
		client.conn = nil
	}
	client.mu.Unlock()
}

// --- internals ---

// connectOnce tries to connect and set up topology once.
func (client *Client) connectOnce(ctx context.Context) error {
	start := time.Now().UTC()

	conn, err := amqp.DialConfig(client.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(10 * time.Second),
	})
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}

	// declare/ensure topology idempotently
	if err := declareTopology(ch, &client.cfg); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	// confirm mode: the broker acks or nacks every publish on this channel
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	// returned (unroutable) messages are recorded by correlation id
	go client.returns.listen(ch.NotifyReturn(make(chan amqp.Return, 16)))

	client.mu.Lock()
	client.conn = conn
	if client.pubChan != nil {
		_ = client.pubChan.Close()
	}
	client.pubChan = ch
	client.mu.Unlock()

	// watch for connection/channel closures and trigger reconnect
	go func() {
		connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
		chClosed := ch.NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-client.closed:
			return
		case <-connClosed:
		case <-chClosed:
		}

		select {
		case client.reconnect <- struct{}{}:
		default:
			// already enqueued; no-op
		}
	}()

	client.logger.Info(ctx, "rabbitmq_connected",
		fmt.Sprintf("Connected to RabbitMQ; exchange: %s, queue: %s", client.cfg.RabbitMQ.Exchange, client.cfg.RabbitMQ.Queue),
		map[string]any{"duration_ms": time.Since(start).Milliseconds()})

	return nil
}

// watch runs in background and attempts reconnects with exponential backoff.
func (client *Client) watch() {
	backoff := time.Second
	for {
		select {
		case <-client.closed:
			return
		case <-client.reconnect:
			for {
				select {
				case <-client.closed:
					return
				default:
				}

				ctx, cancel := context.WithTimeout(client.logCtx, 30*time.Second)
				err := client.connectOnce(ctx)
				cancel()

				if err == nil {
					backoff = time.Second
					client.logger.Info(client.logCtx, "rabbitmq_reconnected", "Reconnected to RabbitMQ and re-ensured topology", nil)
					break
				}

				client.logger.Error(client.logCtx, "retry_attempted", fmt.Sprintf("RabbitMQ reconnect failed: %v", err), err)

				time.Sleep(backoff)
				if backoff < 30*time.Second {
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
				}
			}
		}
	}
}

// declareTopology declares the booking exchange, queue, and the dead-letter
// pair. Rejected or expired booking messages end up on the DL queue.
func declareTopology(ch *amqp.Channel, cfg *config.Config) error {
	mq := cfg.RabbitMQ

	// dead-letter pair first so the primary queue can reference it
	if err := ch.ExchangeDeclare(mq.DLExchange, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(mq.DLQueue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(mq.DLQueue, mq.DLRoutingKey, mq.DLExchange, false, nil); err != nil {
		return err
	}

	// primary booking exchange and queue
	if err := ch.ExchangeDeclare(mq.Exchange, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	_, err := ch.QueueDeclare(mq.Queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    mq.DLExchange,
		"x-dead-letter-routing-key": mq.DLRoutingKey,
	})
	if err != nil {
		return err
	}
	return ch.QueueBind(mq.Queue, mq.RoutingKey, mq.Exchange, false, nil)
}
