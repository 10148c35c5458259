package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/draftkit/sleeper-mcp/logger"
	"github.com/draftkit/sleeper-mcp/mcp/transport"
	"github.com/draftkit/sleeper-mcp/mcp/types"
)

// maxLineSize bounds a single JSON-RPC frame. Player catalogs are megabytes
// upstream but responses to the host are formatted text, so 4 MiB is ample.
const maxLineSize = 4 * 1024 * 1024

// StdioTransport speaks newline-delimited JSON-RPC over a reader/writer
// pair, by default stdin and stdout. Logs must go to stderr since stdout is
// the wire.
type StdioTransport struct {
	in             io.Reader
	out            io.Writer
	logger         logger.Logger
	messageHandler transport.MessageHandler
	errorHandler   transport.ErrorHandler
	closeHandler   transport.CloseHandler
	writeMu        sync.Mutex
	closed         bool
	mu             sync.Mutex
	closeOnce      sync.Once
	done           chan struct{}
}

type StdioTransportOption func(*StdioTransport)

// WithStreams overrides stdin/stdout, used by tests.
func WithStreams(in io.Reader, out io.Writer) StdioTransportOption {
	return func(t *StdioTransport) {
		t.in = in
		t.out = out
	}
}

func NewStdioTransport(logger logger.Logger, options ...StdioTransportOption) *StdioTransport {
	transport := &StdioTransport{
		in:     os.Stdin,
		out:    os.Stdout,
		logger: logger,
		done:   make(chan struct{}),
	}

	for _, option := range options {
		option(transport)
	}

	return transport
}

func (t *StdioTransport) SetMessageHandler(handler transport.MessageHandler) {
	t.messageHandler = handler
}

func (t *StdioTransport) SetErrorHandler(handler transport.ErrorHandler) {
	t.errorHandler = handler
}

func (t *StdioTransport) SetCloseHandler(handler transport.CloseHandler) {
	t.closeHandler = handler
}

func (t *StdioTransport) Start(ctx context.Context) error {
	go t.readLoop(ctx)

	go func() {
		<-ctx.Done()
		t.Close()
	}()

	return nil
}

func (t *StdioTransport) readLoop(ctx context.Context) {
	scanner := bufio.NewScanner(t.in)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		case <-t.done:
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var message types.JSONRPCMessage
		if err := json.Unmarshal([]byte(line), &message); err != nil {
			t.logger.Warn("discarding unparseable frame: %v", err)
			t.reply(ctx, &types.JSONRPCMessage{
				JSONRPC: "2.0",
				Error: &types.JSONRPCError{
					Code:    types.CodeParseError,
					Message: "parse error",
				},
			})
			continue
		}

		if t.messageHandler != nil {
			t.messageHandler(&message)
		}
	}

	if err := scanner.Err(); err != nil {
		if t.errorHandler != nil {
			t.errorHandler(err)
		}
	}

	// stdin closed, the host is gone
	t.Close()
}

func (t *StdioTransport) reply(ctx context.Context, message *types.JSONRPCMessage) {
	if err := t.Send(ctx, message); err != nil && t.errorHandler != nil {
		t.errorHandler(err)
	}
}

func (t *StdioTransport) Send(ctx context.Context, message *types.JSONRPCMessage) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return io.ErrClosedPipe
	}
	t.mu.Unlock()

	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_, err = t.out.Write(append(data, '\n'))
	return err
}

func (t *StdioTransport) Close() error {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		t.mu.Unlock()
		close(t.done)
		if t.closeHandler != nil {
			t.closeHandler()
		}
	})
	return nil
}
