package browser

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrTimeout is returned when an expected page state does not appear in time.
	ErrTimeout = errors.New("browser: timed out waiting for page state")
	// ErrElementNotFound is returned when the page loaded but an element is absent.
	ErrElementNotFound = errors.New("browser: element not found")
	// ErrNotStarted is returned by every call made before Start.
	ErrNotStarted = errors.New("browser: not started")
)

// Field is one input to fill before submitting a form.
type Field struct {
	Selector string
	Value    string
}

// Client is the subset of browser automation the sources need. Selectors
// starting with "/" or "(" are XPath, everything else is CSS.
//
// Waiting calls block up to the configured timeout or the context deadline,
// whichever comes first, and then return an error wrapping ErrTimeout.
type Client interface {
	// Start launches or attaches to the browser and opens a blank page.
	Start(ctx context.Context) error

	// Navigate loads url in the current window and leaves any frame.
	Navigate(ctx context.Context, url string) error

	// Click waits for selector and clicks it.
	Click(ctx context.Context, selector string) error

	// FillAndSubmit replaces the value of each field, then clicks submit.
	FillAndSubmit(ctx context.Context, fields []Field, submit string) error

	// WaitForAny waits until one of selectors is present and returns its index.
	WaitForAny(ctx context.Context, selectors ...string) (int, error)

	// WaitForAndExtract waits for ready to be visible, then reads the text of
	// each labeled selector. Labels whose element is absent are left out of the
	// result and reported by a *MissingError.
	WaitForAndExtract(ctx context.Context, ready string, labels map[string]string) (map[string]string, error)

	// TextsOf returns the text of every element matching selector, without waiting.
	TextsOf(ctx context.Context, selector string) ([]string, error)

	// GoBack navigates the current window back in history.
	GoBack(ctx context.Context) error

	// EnterFrames descends into nested iframes, outermost first.
	EnterFrames(ctx context.Context, selectors ...string) error

	// LeaveFrames returns to the top-level document of the current window.
	LeaveFrames()

	// FollowNewWindow clicks selector and switches to the window it opens.
	FollowNewWindow(ctx context.Context, selector string) error

	// SwitchToMain switches back to the first window.
	SwitchToMain(ctx context.Context) error

	// Screenshot captures the visible part of the current window as PNG.
	Screenshot(ctx context.Context) ([]byte, error)

	// Close shuts the browser down. It is safe to call more than once.
	Close() error
}

// MissingError lists labels whose element was absent after the page loaded.
type MissingError struct {
	Labels []string
}

func (e *MissingError) Error() string {
	return ErrElementNotFound.Error() + ": " + strings.Join(e.Labels, ", ")
}

func (e *MissingError) Unwrap() error {
	return ErrElementNotFound
}

// IsXPath reports whether selector is an XPath expression.
func IsXPath(selector string) bool {
	s := strings.TrimSpace(selector)
	return strings.HasPrefix(s, "/") || strings.HasPrefix(s, "(")
}
