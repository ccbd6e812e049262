// Package mqtt publishes the state of a display to an MQTT broker and
// receives commands for it, using paho.mqtt.golang.
//
// Topic tree for a display registered as "lounge" with the default prefix:
//
//	bravia/lounge/status               online | offline (retained, also the will)
//	bravia/lounge/state/power          on | off (retained)
//	bravia/lounge/state/volume         0..100 (retained)
//	bravia/lounge/state/mute           on | off (retained)
//	bravia/lounge/state/picture_mute   on | off (retained)
//	bravia/lounge/state/input          "hdmi 2" | "none" (retained)
//	bravia/lounge/state/scene          auto | auto24pSync | general (retained)
//	bravia/lounge/set/<command>        commands, see SetCommands
//
// The broker publishes "offline" on the status topic when the bridge
// disappears without closing the client.
package mqtt
