// Package dom provides the host tree the form rules engine operates on: an
// HTML document parsed with golang.org/x/net/html, queried with CSS selectors
// and extended with the pieces of browser state the engine needs (control
// values, inline display, bubbling events and focus).
//
// Programmatic mutations (SetValue, SetChecked, SetDisplayed) never dispatch
// events. The helpers in interact.go simulate user interaction and dispatch a
// single event each.
package dom
