// Package control implements the named display operations (power, volume,
// mute, input, scene, network queries and remote control codes) as
// request/answer exchanges over a Sender.
//
//	ctrl := control.New(dev)
//	on, err := ctrl.PowerStatus(ctx)
//	vol, err := ctrl.VolumeUp(ctx, 5)
//	in, err := ctrl.SetInput(ctx, "hdmi", 2)
//	err = ctrl.SendIRCC(ctx, "Home")
//
// Setters that change state read it back and return the value the display
// reports. Answers outside the documented values fail with
// device.ErrUnexpectedResponse.
package control
