// Package proto provides the command frame protocol of UART e-paper controllers.
package proto

// Every command is sent to the controller as a single frame:
//
//	A5 | LEN(2, big-endian) | CMD | PARAMS... | CC 33 C3 3C | PARITY
//
// LEN counts the whole frame, which is the fixed overhead of 9 bytes plus
// the parameters. PARITY is the XOR of all the bytes before it. The end
// marker lets the controller detect the end of a frame even if the length
// byte is damaged on the line.
//
// Multi-byte parameters (coordinates, sizes) are sent big-endian, strings
// are sent as raw bytes terminated by a single zero byte.
//
// The controller answers with short ASCII strings (e.g. "OK"). There is no
// acknowledgement frame, so responses are diagnostics only.
//
// Producer: host
// Consumer: e-paper controller
