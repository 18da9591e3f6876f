package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"caption-canvas/internal/app"
	"caption-canvas/internal/export"

	"github.com/mark3labs/mcp-go/mcp"
)

func newServer(t *testing.T, opts ...Option) (*Server, *app.Session) {
	t.Helper()
	sess, err := app.Open(nil, app.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sess.Close() })
	return New(sess, opts...), sess
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T", res.Content[0])
	}
	return tc.Text
}

func TestToolsRoundTrip(t *testing.T) {
	s, sess := newServer(t)
	ctx := context.Background()

	if _, err := s.handleAddShape(ctx, call(map[string]any{"kind": "rect", "color": "blue"})); err != nil {
		t.Fatal(err)
	}
	if _, err := s.handleAddCaption(ctx, call(map[string]any{"text": "hello"})); err != nil {
		t.Fatal(err)
	}

	for _, step := range []map[string]any{
		{"action": "down", "x": 150.0, "y": 120.0},
		{"action": "move", "x": 160.0, "y": 130.0},
		{"action": "up", "x": 160.0, "y": 130.0},
	} {
		if _, err := s.handlePointer(ctx, call(step)); err != nil {
			t.Fatal(err)
		}
	}

	res, err := s.handleListElements(ctx, call(nil))
	if err != nil {
		t.Fatal(err)
	}
	var report struct {
		Selected string `json:"selected"`
		Elements []struct {
			ID string `json:"id"`
		} `json:"elements"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &report); err != nil {
		t.Fatal(err)
	}
	if len(report.Elements) != 2 {
		t.Errorf("listed %d elements", len(report.Elements))
	}
	if report.Selected != "rect-1" {
		t.Errorf("selected = %q", report.Selected)
	}
	e, _ := sess.Scene().Element("rect-1")
	if e.Pos().X != 110 || e.Pos().Y != 110 {
		t.Errorf("rect position = %v", e.Pos())
	}

	if _, err := s.handlePressKey(ctx, call(map[string]any{"key": "Delete"})); err != nil {
		t.Fatal(err)
	}
	if sess.Scene().Len() != 1 {
		t.Errorf("len = %d after delete", sess.Scene().Len())
	}
}

func TestToolErrors(t *testing.T) {
	s, _ := newServer(t)
	ctx := context.Background()

	if _, err := s.handleAddCaption(ctx, call(map[string]any{"text": "  "})); err == nil {
		t.Error("blank caption should fail")
	}
	if _, err := s.handleAddShape(ctx, call(map[string]any{"kind": "star"})); err == nil {
		t.Error("unknown kind should fail")
	}
	if _, err := s.handleSelectElement(ctx, call(map[string]any{"id": "rect-9"})); err == nil {
		t.Error("unknown id should fail")
	}
	if _, err := s.handlePointer(ctx, call(map[string]any{"action": "hover", "x": 1.0, "y": 1.0})); err == nil {
		t.Error("unknown action should fail")
	}
	if _, err := s.handlePointer(ctx, call(map[string]any{"action": "down"})); err == nil {
		t.Error("missing coordinates should fail")
	}
	if _, err := s.handleExportImage(ctx, call(map[string]any{"format": "gif"})); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestExportTool(t *testing.T) {
	var gotName string
	var gotLen int
	s, _ := newServer(t, WithSaver(export.SaverFunc(func(name string, data []byte) error {
		gotName, gotLen = name, len(data)
		return nil
	})))

	res, err := s.handleExportImage(context.Background(), call(map[string]any{"format": "jpeg"}))
	if err != nil {
		t.Fatal(err)
	}
	if gotName != "canvas-image.jpg" || gotLen == 0 {
		t.Errorf("saved %q (%d bytes)", gotName, gotLen)
	}
	if !strings.Contains(resultText(t, res), "canvas-image.jpg (image/jpeg)") {
		t.Errorf("result = %q", resultText(t, res))
	}
}
