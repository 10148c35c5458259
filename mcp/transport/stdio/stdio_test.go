package stdio

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/draftkit/sleeper-mcp/logger"
	"github.com/draftkit/sleeper-mcp/mcp/types"
)

func TestNewStdioTransport(t *testing.T) {
	log := logger.NewTestLogger()
	transport := NewStdioTransport(log)

	if transport == nil {
		t.Fatal("Expected non-nil transport")
	}
}

func TestReadLoopDeliversMessages(t *testing.T) {
	log := logger.NewTestLogger()
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n")
	var out bytes.Buffer
	transport := NewStdioTransport(log, WithStreams(in, &out))

	received := make(chan *types.JSONRPCMessage, 1)
	transport.SetMessageHandler(func(message *types.JSONRPCMessage) {
		received <- message
	})

	if err := transport.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case msg := <-received:
		if msg.Method != "ping" {
			t.Errorf("Expected method ping, got %s", msg.Method)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for message")
	}
}

func TestReadLoopSkipsBlankLines(t *testing.T) {
	log := logger.NewTestLogger()
	in := strings.NewReader("\n\n" + `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n")
	var out bytes.Buffer
	transport := NewStdioTransport(log, WithStreams(in, &out))

	received := make(chan *types.JSONRPCMessage, 4)
	transport.SetMessageHandler(func(message *types.JSONRPCMessage) {
		received <- message
	})

	closed := make(chan struct{})
	transport.SetCloseHandler(func() { close(closed) })

	if err := transport.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	<-closed
	if len(received) != 1 {
		t.Errorf("Expected 1 message, got %d", len(received))
	}
}

func TestReadLoopRepliesToGarbage(t *testing.T) {
	log := logger.NewTestLogger()
	in := strings.NewReader("this is not json\n")
	var out bytes.Buffer
	transport := NewStdioTransport(log, WithStreams(in, &out))

	closed := make(chan struct{})
	transport.SetCloseHandler(func() { close(closed) })

	if err := transport.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	<-closed

	var reply types.JSONRPCMessage
	if err := json.Unmarshal(bytes.TrimSpace(out.Bytes()), &reply); err != nil {
		t.Fatalf("Expected a JSON reply, got %q: %v", out.String(), err)
	}
	if reply.Error == nil || reply.Error.Code != types.CodeParseError {
		t.Errorf("Expected parse error reply, got %+v", reply.Error)
	}
}

func TestSendWritesOneLine(t *testing.T) {
	log := logger.NewTestLogger()
	var out bytes.Buffer
	transport := NewStdioTransport(log, WithStreams(strings.NewReader(""), &out))

	msg := &types.JSONRPCMessage{JSONRPC: "2.0", ID: 7, Method: "ping"}
	if err := transport.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	line := out.String()
	if !strings.HasSuffix(line, "\n") {
		t.Error("Expected newline-terminated frame")
	}
	if strings.Count(line, "\n") != 1 {
		t.Errorf("Expected exactly one line, got %q", line)
	}
}

func TestSendAfterClose(t *testing.T) {
	log := logger.NewTestLogger()
	var out bytes.Buffer
	transport := NewStdioTransport(log, WithStreams(strings.NewReader(""), &out))

	if err := transport.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := transport.Send(context.Background(), &types.JSONRPCMessage{JSONRPC: "2.0"}); err == nil {
		t.Error("Expected error sending on closed transport")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	log := logger.NewTestLogger()
	var out bytes.Buffer
	transport := NewStdioTransport(log, WithStreams(strings.NewReader(""), &out))

	calls := 0
	transport.SetCloseHandler(func() { calls++ })

	transport.Close()
	transport.Close()
	if calls != 1 {
		t.Errorf("Expected close handler to run once, ran %d times", calls)
	}
}
