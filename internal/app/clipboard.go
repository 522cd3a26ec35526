package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"

	"notedeck/internal/logging"
)

// Clipboard receives share links. It reports which mechanism took the text.
type Clipboard interface {
	Copy(text string) (string, error)
}

const (
	clipboardViaSystem = "system"
	clipboardViaOSC52  = "osc52"
)

// terminalClipboard tries the desktop clipboard first and falls back to an
// OSC 52 escape on the controlling tty, which works over ssh.
type terminalClipboard struct {
	writeSystem func(string) error
	writeOSC52  func(string) error
	getenv      func(string) string
}

func newTerminalClipboard() *terminalClipboard {
	c := &terminalClipboard{writeSystem: clipboard.WriteAll, getenv: os.Getenv}
	c.writeOSC52 = c.writeTTY
	return c
}

func (c *terminalClipboard) Copy(text string) (string, error) {
	systemErr := c.writeSystem(text)
	if systemErr == nil {
		return clipboardViaSystem, nil
	}
	oscErr := c.writeOSC52(text)
	if oscErr == nil {
		return clipboardViaOSC52, nil
	}
	if c.headless() {
		return "", fmt.Errorf("no desktop clipboard (DISPLAY and WAYLAND_DISPLAY unset) and OSC52 failed: %w", oscErr)
	}
	return "", fmt.Errorf("clipboard: %s; OSC52: %w", describeClipboardError(systemErr), oscErr)
}

func (c *terminalClipboard) writeTTY(text string) error {
	term := strings.TrimSpace(c.getenv("TERM"))
	if term == "" || strings.EqualFold(term, "dumb") {
		return errors.New("terminal does not support OSC52")
	}
	if truthy(c.getenv("NOTEDECK_DISABLE_OSC52")) {
		return errors.New("OSC52 disabled")
	}
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open /dev/tty: %w", err)
	}
	defer tty.Close()
	return c.writeSequence(tty, text)
}

func (c *terminalClipboard) writeSequence(w io.Writer, text string) error {
	seq := osc52.New(text)
	switch {
	case c.getenv("TMUX") != "":
		// tmux passes the plain form only with set-clipboard on; send both.
		if _, err := seq.WriteTo(w); err != nil {
			return err
		}
		_, err := seq.Tmux().WriteTo(w)
		return err
	case strings.HasPrefix(strings.ToLower(c.getenv("TERM")), "screen"):
		_, err := seq.Screen().WriteTo(w)
		return err
	default:
		_, err := seq.WriteTo(w)
		return err
	}
}

func (c *terminalClipboard) headless() bool {
	return strings.TrimSpace(c.getenv("DISPLAY")) == "" && strings.TrimSpace(c.getenv("WAYLAND_DISPLAY")) == ""
}

func describeClipboardError(err error) string {
	msg := strings.TrimSpace(err.Error())
	if msg == "exit status 1" {
		return "clipboard helper exited with status 1"
	}
	return msg
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// copyWithStatus copies text and reports the outcome in the status line or
// as an error toast.
func (m *Model) copyWithStatus(text, success string) bool {
	via, err := m.clipboard.Copy(text)
	if err != nil {
		m.logger.Warn("clipboard copy failed", logging.Err(err))
		m.showErrorToast("Copy failed: " + err.Error())
		return false
	}
	m.logger.Debug("copied to clipboard", logging.F("via", via))
	m.status = success
	return true
}
