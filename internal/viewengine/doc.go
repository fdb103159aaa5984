// Package viewengine turns a user's pantry items and the list controls from the
// request URL into the ordered list that is displayed, together with the expiry
// badge for every item.
//
// Everything in this package is pure. The caller supplies "today" explicitly so a
// single render uses one notion of the current date for both filtering and
// classification, and so tests can pin it.
package viewengine
