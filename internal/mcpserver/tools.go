package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"caption-canvas/internal/export"
	"caption-canvas/internal/interact"
	"caption-canvas/pkg/colorutil"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerElementTools() {
	s.mcp.AddTool(mcp.NewTool("add_caption",
		mcp.WithDescription("Add a text caption at the default caption position"),
		mcp.WithString("text", mcp.Description("Caption text"), mcp.Required()),
		mcp.WithString("color", mcp.Description("Text color: "+strings.Join(colorutil.TextPalette, ", "))),
	), s.handleAddCaption)

	s.mcp.AddTool(mcp.NewTool("add_shape",
		mcp.WithDescription("Add a shape at its default position"),
		mcp.WithString("kind", mcp.Description("Shape kind: rect, circle, polygon"), mcp.Required()),
		mcp.WithString("color", mcp.Description("Fill color: "+strings.Join(colorutil.ShapePalette, ", "))),
	), s.handleAddShape)

	s.mcp.AddTool(mcp.NewTool("select_element",
		mcp.WithDescription("Select an element and attach the resize handles; an empty id clears the selection"),
		mcp.WithString("id", mcp.Description("Element ID")),
	), s.handleSelectElement)

	s.mcp.AddTool(mcp.NewTool("remove_element",
		mcp.WithDescription("Remove an element by ID"),
		mcp.WithString("id", mcp.Description("Element ID"), mcp.Required()),
	), s.handleRemoveElement)

	s.mcp.AddTool(mcp.NewTool("list_elements",
		mcp.WithDescription("List all elements with their IDs, kinds and attributes"),
	), s.handleListElements)
}

func (s *Server) registerInputTools() {
	s.mcp.AddTool(mcp.NewTool("pointer",
		mcp.WithDescription("Send a pointer event in canvas coordinates"),
		mcp.WithString("action", mcp.Description("down, move or up"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("X position"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("Y position"), mcp.Required()),
	), s.handlePointer)

	s.mcp.AddTool(mcp.NewTool("press_key",
		mcp.WithDescription("Send a key press: Escape, Delete, BackSpace, Up, Down, Left, Right"),
		mcp.WithString("key", mcp.Description("Key name"), mcp.Required()),
		mcp.WithBoolean("shift", mcp.Description("Shift held")),
	), s.handlePressKey)
}

func (s *Server) registerExportTools() {
	s.mcp.AddTool(mcp.NewTool("export_image",
		mcp.WithDescription("Export the canvas without selection handles"),
		mcp.WithString("format", mcp.Description("png or jpeg"), mcp.Required()),
		mcp.WithString("dir", mcp.Description("Output directory (optional, defaults to the working directory)")),
	), s.handleExportImage)
}

func (s *Server) handleAddCaption(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	t, err := s.session.AddCaption(stringArg(args, "text"), stringArg(args, "color"))
	if err != nil {
		return nil, err
	}
	return jsonResult(t)
}

func (s *Server) handleAddShape(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	e, err := s.session.AddShape(stringArg(args, "kind"), stringArg(args, "color"))
	if err != nil {
		return nil, err
	}
	return jsonResult(e)
}

func (s *Server) handleSelectElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringArg(req.GetArguments(), "id")
	if !s.session.Select(id) {
		return nil, fmt.Errorf("element %s not found", id)
	}
	if id == "" {
		return textResult("Selection cleared"), nil
	}
	return textResult(fmt.Sprintf("Element %s selected", id)), nil
}

func (s *Server) handleRemoveElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringArg(req.GetArguments(), "id")
	if !s.session.Remove(id) {
		return nil, fmt.Errorf("element %s not found", id)
	}
	return textResult(fmt.Sprintf("Element %s removed", id)), nil
}

func (s *Server) handleListElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.session.Inspect())
}

func (s *Server) handlePointer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	x, err := numberArg(args, "x")
	if err != nil {
		return nil, err
	}
	y, err := numberArg(args, "y")
	if err != nil {
		return nil, err
	}

	var ev interact.Event
	switch stringArg(args, "action") {
	case "down":
		ev = interact.PointerDown{X: x, Y: y}
	case "move":
		ev = interact.PointerMove{X: x, Y: y}
	case "up":
		ev = interact.PointerUp{X: x, Y: y}
	default:
		return nil, fmt.Errorf("action must be down, move or up")
	}
	mode := s.session.Handle(ev)
	return jsonResult(map[string]string{
		"mode":     mode.String(),
		"selected": s.session.Controller().Target(),
	})
}

func (s *Server) handlePressKey(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	key := stringArg(args, "key")
	if key == "" {
		return nil, fmt.Errorf("key is required")
	}
	shift, _ := args["shift"].(bool)
	mode := s.session.Handle(interact.KeyPress{Key: key, Shift: shift})
	return jsonResult(map[string]string{
		"mode":     mode.String(),
		"selected": s.session.Controller().Target(),
	})
}

func (s *Server) handleExportImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	enc, err := export.ParseEncoding(stringArg(args, "format"))
	if err != nil {
		return nil, err
	}
	saver := s.saver
	if saver == nil {
		dir := stringArg(args, "dir")
		if dir == "" {
			dir = "."
		}
		saver = export.DirSaver{Dir: dir}
	}
	name, err := s.session.Export(enc, saver)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Exported %s (%s)", name, enc.MIMEType())), nil
}
