// Package dom describes the host document surface the form-state layer reads
// from: an ordered, live collection of named controls exposing their value,
// checked/selected state, files, native validity message and the declared
// coercion directives (data-valueasdate, data-valueasnumber, data-valueasbool)
// plus the data-errormessage override. Implementations are expected to mirror
// the HTML constraint-validation API; the in-memory memdom package is one.
//
// Nothing in this package mutates a host on its own. Callers drive controls
// through the interfaces and listen to events through EventSource.
package dom
