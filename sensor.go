package main

import "periph.io/x/conn/v3/gpio"

// evaluateNet interprets the sense level read while the net's drive pin was
// high.  A high sense level means the circuit is closed.  For ExpectClosed
// nets an open circuit is a fault (broken wire); for ExpectOpen nets a
// closed circuit is a fault (short).  Unrecognised expectations are treated
// as ExpectClosed.
func evaluateNet(n Net, sense gpio.Level) (closed, fault bool) {
	closed = sense == gpio.High
	switch n.Expect {
	case ExpectOpen:
		return closed, closed
	default:
		return closed, !closed
	}
}
