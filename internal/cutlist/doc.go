// Package cutlist talks to the cut-list provider and turns its interval
// descriptions into keep timelines. A cut list's entries mark the spans to
// remove (commercial breaks); the keep timeline is their complement over the
// full video duration, expressed in milliseconds.
package cutlist
