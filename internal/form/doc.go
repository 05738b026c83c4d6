// Package form holds the draft state of the contact and quote forms and the
// submission workflow that turns a draft into exactly one insert against the
// store.
//
// A draft moves through Idle → Submitting → Succeeded | Failed; the last two
// are resting states from which the next submit starts over. A draft that
// fails the required-field gate never leaves Idle and never reaches the
// store. A draft whose token is already being submitted is turned away as
// busy by the shared Guard. On success the draft is reset and a new token is
// issued; on failure the draft is kept so it can be submitted again.
package form
