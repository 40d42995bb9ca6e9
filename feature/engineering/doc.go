// Package engineering reads drawing revisions from the engineering portal.
//
// The drawings page lives two iframes deep. Each lookup enters both frames,
// submits the part number and waits a short, separate timeout for the
// revision node of the first drawing. The revision is the last word of that
// node's text, so "Rev B" yields "B".
//
// Either result view offers one of three back buttons; a single XPath union
// matches whichever is present.
package engineering
