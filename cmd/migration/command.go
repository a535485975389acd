package main

import (
	"fmt"
	"strconv"
	"strings"
)

type command struct {
	name    string
	steps   int
	target  uint
	version int
}

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, fmt.Errorf("missing command")
	}

	cmd := command{name: strings.ToLower(strings.TrimSpace(args[0]))}
	rest := args[1:]

	switch cmd.name {
	case "up", "version":
		return cmd, nil
	case "down":
		cmd.steps = 1
		if len(rest) > 0 {
			steps, err := strconv.Atoi(strings.TrimSpace(rest[0]))
			if err != nil {
				return command{}, fmt.Errorf("invalid down steps %q: %w", rest[0], err)
			}
			if steps <= 0 {
				return command{}, fmt.Errorf("down steps must be > 0")
			}
			cmd.steps = steps
		}
		return cmd, nil
	case "goto", "migrate":
		cmd.name = "goto"
		if len(rest) == 0 {
			return command{}, fmt.Errorf("goto requires a target version")
		}
		target, err := strconv.ParseUint(strings.TrimSpace(rest[0]), 10, 64)
		if err != nil {
			return command{}, fmt.Errorf("invalid target version %q: %w", rest[0], err)
		}
		cmd.target = uint(target)
		return cmd, nil
	case "force":
		if len(rest) == 0 {
			return command{}, fmt.Errorf("force requires a version")
		}
		version, err := strconv.Atoi(strings.TrimSpace(rest[0]))
		if err != nil {
			return command{}, fmt.Errorf("invalid version %q: %w", rest[0], err)
		}
		if version < -1 {
			return command{}, fmt.Errorf("version must be >= -1")
		}
		cmd.version = version
		return cmd, nil
	default:
		return command{}, fmt.Errorf("unknown command %q", cmd.name)
	}
}
