package tui

import (
	"errors"
	"fmt"
	"sync/atomic"

	"golang.design/x/clipboard"
)

var errClipboardUnavailable = errors.New("clipboard not available")

var clipboardReady atomic.Bool

// writeClipboard is swapped in tests
var writeClipboard = copyToClipboard

func initClipboard() error {
	if err := clipboard.Init(); err != nil {
		return fmt.Errorf("failed to initialize clipboard: %w", err)
	}
	clipboardReady.Store(true)
	return nil
}

func copyToClipboard(text string) error {
	if !clipboardReady.Load() {
		return errClipboardUnavailable
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
