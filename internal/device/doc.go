// Package device manages the control connection to one BRAVIA display.
//
// A Device owns one TCP socket and moves through four states:
//
//	Disconnected --Connect--> Connecting --> Connected --Disconnect--> Disconnecting --> Disconnected
//
// A peer-initiated close goes straight from Connected to Disconnected.
//
// Send writes a Control or Enquiry packet and waits for the Answer with the
// same command. Only one request is on the wire at a time; concurrent callers
// queue in arrival order. Unsolicited Notify packets are decoded and fanned
// out to every OnNotify subscriber before answer matching runs.
//
//	dev, err := device.New("192.168.1.20")
//	if err != nil {
//	    return err
//	}
//	if err := dev.Connect(ctx); err != nil {
//	    return err
//	}
//	defer dev.Disconnect(context.Background())
//
//	unsubscribe := dev.OnNotify(func(n protocol.Notification) { ... })
//	defer unsubscribe()
//
//	answer, err := dev.Send(ctx, device.Request{Type: protocol.Enquiry, Command: "POWR"})
//
// All failures are *Error values; use errors.Is with the package sentinels
// (ErrTimeout, ErrDevice, ErrConnectionLost, ...) or the Is* helpers.
// The Device never retries; reconnect and retry policy belong to the caller.
package device
