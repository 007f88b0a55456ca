package main

import (
	"strconv"
	"strings"
)

// Callback payload format for the interactive "mark as done" flow:
// "mark_done:<identity>:<token>" where token is either the literal
// "show_list" (render a fresh keyboard of pending items) or a decimal
// absolute row number (commit that row to done).  This is the only wire
// format the bot owns, so encode and decode live next to each other.

const (
	callbackMarkDone = "mark_done"
	callbackShowList = "show_list"
)

func encodeShowList(handle string) string {
	return strings.Join([]string{callbackMarkDone, handle, callbackShowList}, ":")
}

func encodeMarkDoneRow(handle string, row int) string {
	return strings.Join([]string{callbackMarkDone, handle, strconv.Itoa(row)}, ":")
}

// decodeMarkDone parses callback data.  ok is false for anything that is not
// a well-formed mark_done payload; showList distinguishes the list-rendering
// branch from a row commit.
func decodeMarkDone(data string) (handle string, row int, showList bool, ok bool) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 || parts[0] != callbackMarkDone || parts[1] == "" {
		return "", 0, false, false
	}
	handle = parts[1]
	if parts[2] == callbackShowList {
		return handle, 0, true, true
	}
	row, err := strconv.Atoi(parts[2])
	if err != nil || row < 1 {
		return "", 0, false, false
	}
	return handle, row, false, true
}
