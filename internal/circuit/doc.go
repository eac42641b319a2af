// Package circuit solves resistive DC circuits made of a single series or
// parallel resistor set, driven either by ideal voltage sources or by a
// directly specified total current.
//
// Solve is a pure function: it holds no state, performs no I/O and is safe
// for concurrent use.
package circuit
