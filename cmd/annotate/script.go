package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"caption-canvas/internal/interact"
)

// parseScript reads one input event per line:
//
//	down X Y | move X Y | up X Y | key NAME [shift]
//
// Blank lines and lines starting with # are skipped.
func parseScript(r io.Reader) ([]interact.Event, error) {
	var events []interact.Event
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		ev, err := parseEvent(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return events, nil
}

func parseEvent(fields []string) (interact.Event, error) {
	switch strings.ToLower(fields[0]) {
	case "down", "move", "up":
		if len(fields) != 3 {
			return nil, fmt.Errorf("%s needs X and Y", fields[0])
		}
		x, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid x %q", fields[1])
		}
		y, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid y %q", fields[2])
		}
		switch strings.ToLower(fields[0]) {
		case "down":
			return interact.PointerDown{X: x, Y: y}, nil
		case "move":
			return interact.PointerMove{X: x, Y: y}, nil
		}
		return interact.PointerUp{X: x, Y: y}, nil
	case "key":
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("key needs a name")
		}
		shift := len(fields) == 3 && strings.EqualFold(fields[2], "shift")
		if len(fields) == 3 && !shift {
			return nil, fmt.Errorf("unknown key modifier %q", fields[2])
		}
		return interact.KeyPress{Key: fields[1], Shift: shift}, nil
	}
	return nil, fmt.Errorf("unknown event %q", fields[0])
}
