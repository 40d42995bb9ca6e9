// Package portal owns the browser session behind both web sources.
//
// The operator logs in on the portal home page. Extraction then runs in the
// FSE window the portal opens in a new tab; comparison runs on the drawings
// page of the first window. Session navigates as far as it can towards each
// view and leaves the last steps to the operator, who confirms through the
// control surface.
package portal
