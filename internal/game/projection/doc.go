// Package projection derives read models by folding ordered event
// sequences.
//
// Every projection is a pure, total function of the events it is given:
// malformed or unknown data yields the view's zero value, never an error,
// and the same prefix always re-derives the same view. Anchor-seeking (for
// example scanning forward from a quest's accepted event) is an optimization
// only; it must agree with a full scan.
package projection
