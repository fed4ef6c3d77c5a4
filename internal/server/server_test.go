package server

import (
	"encoding/json"
	"testing"
)

func TestNew(t *testing.T) {
	srv := New()
	if srv == nil {
		t.Fatal("New returned nil")
	}
	if srv.cache == nil {
		t.Error("server created without an image cache")
	}
}

func TestHandleInitialize(t *testing.T) {
	srv := New()
	resp := srv.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("initialize response = %+v, want success", resp)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("result type = %T, want map", resp.Result)
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion = %v, want 2024-11-05", result["protocolVersion"])
	}
	info, ok := result["serverInfo"].(map[string]interface{})
	if !ok || info["name"] != "image-topology-mcp" {
		t.Errorf("serverInfo = %v, want name image-topology-mcp", result["serverInfo"])
	}
}

func TestHandlePing(t *testing.T) {
	srv := New()
	resp := srv.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 7, Method: "ping"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("ping response = %+v, want empty success", resp)
	}
	if resp.ID != 7 {
		t.Errorf("response ID = %v, want 7", resp.ID)
	}
}

func TestHandleInitializedNotification(t *testing.T) {
	srv := New()
	if resp := srv.handleRequest(&MCPRequest{JSONRPC: "2.0", Method: "notifications/initialized"}); resp != nil {
		t.Errorf("notification got a response: %+v", resp)
	}
}

func TestHandleUnknownMethod(t *testing.T) {
	srv := New()
	resp := srv.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 2, Method: "no/such/method"})

	if resp == nil || resp.Error == nil {
		t.Fatal("unknown method did not produce an error response")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("error code = %d, want -32601", resp.Error.Code)
	}
}

func TestHandleToolsList(t *testing.T) {
	srv := New()
	resp := srv.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 3, Method: "tools/list"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("tools/list response = %+v, want success", resp)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("result type = %T, want map", resp.Result)
	}
	tools, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatalf("tools type = %T, want []Tool", result["tools"])
	}
	if len(tools) != len(GetToolDefinitions()) {
		t.Errorf("listed %d tools, want %d", len(tools), len(GetToolDefinitions()))
	}
}

func TestHandleToolsCallInvalidParams(t *testing.T) {
	srv := New()
	resp := srv.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      4,
		Method:  "tools/call",
		Params:  json.RawMessage(`{"name": 42}`),
	})

	if resp == nil || resp.Error == nil {
		t.Fatal("malformed params did not produce an error response")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("error code = %d, want -32602", resp.Error.Code)
	}
}

func TestHandleToolsCallUnknownTool(t *testing.T) {
	srv := New()
	resp := srv.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      5,
		Method:  "tools/call",
		Params:  json.RawMessage(`{"name": "no_such_tool", "arguments": {}}`),
	})

	if resp == nil || resp.Error == nil {
		t.Fatal("unknown tool did not produce an error response")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("error code = %d, want -32000", resp.Error.Code)
	}
}
