// Package simulator runs a fake BRAVIA display that speaks simple IP
// control over TCP.
//
// It answers enquiries from its State, applies control requests and sends
// a Notify packet to every client for each change, like a real display
// does when its remote is used. Requests other than POWR, BADR, MADR and
// IRCC fail with the device error value while the simulated display is in
// standby.
//
//	sim := simulator.New(simulator.DefaultState())
//	if err := sim.Listen("127.0.0.1:0"); err != nil {
//	    return err
//	}
//	defer sim.Close()
//	dev, _ := device.New("127.0.0.1", device.WithPort(sim.Port()))
package simulator
