// Package dom provides small helpers for locating and mutating nodes in
// HTML parse trees produced by golang.org/x/net/html.
//
// Design decision: We build on golang.org/x/net/html rather than regex or a
// CSS selector engine because:
//  1. It correctly handles malformed HTML common in generated sites
//  2. Provides a proper DOM-like structure that supports node relocation
//  3. The handful of selectors we need (id, class, role, tag) are trivial
//     predicates, so a selector dependency would pull more than it pays for
package dom
