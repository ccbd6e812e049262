// Package protocol implements the wire format of the simple IP control
// protocol spoken by BRAVIA displays on TCP port 20060.
//
// # Packet Layout
//
// Every packet is exactly 24 bytes:
//
//	offset  size  content
//	0       2     header 0x2A 0x53 ("*S")
//	2       1     type: 'C' control, 'E' enquiry, 'A' answer, 'N' notify
//	3       4     command, upper case ASCII (e.g. "POWR")
//	7       16    parameters, [A-Za-z0-9#]
//	23      1     footer 0x0A
//
// Clients send Control and Enquiry packets. The display replies with an
// Answer carrying the same command and sends Notify packets on its own when
// its state changes.
//
// # Usage
//
//	buf, err := protocol.Encode(protocol.Control, "POWR", protocol.ParametersOn)
//
//	framer := protocol.NewFramer()
//	for _, pkt := range framer.Feed(chunk) {
//	    if n, ok := protocol.DecodeNotification(pkt); ok {
//	        ...
//	    }
//	}
//
// Decode and DecodeNotification never return errors. Input that is not a
// well-formed packet, or a notification with an unexpected payload, is
// reported as not ok and should be ignored.
//
// All functions are stateless and safe for concurrent use. A Framer holds
// per-connection state and belongs to a single reader.
package protocol
