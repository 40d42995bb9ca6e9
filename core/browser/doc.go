// Package browser drives the operator's Chrome session for the FSE and
// engineering sources.
//
// Client is the narrow contract the sources use: navigate, fill and submit,
// wait for one of several page states, read labeled text, move between windows
// and iframes, and take screenshots. Rod implements it with go-rod over the
// DevTools protocol; mocks.Client is a testify mock for source tests.
//
// Selectors beginning with "/" or "(" are XPath, everything else is CSS.
// Every waiting call is bounded by Config.TimeoutSeconds or the caller's
// context deadline, and reports ErrTimeout when exceeded. ErrElementNotFound
// means the page loaded but lacked an expected element.
package browser
