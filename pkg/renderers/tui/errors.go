package tui

import "errors"

// ErrAborted reports that the user interrupted the prompt flow (ctrl-c).
var ErrAborted = errors.New("tui: aborted by user")
