// Package history writes display notifications to InfluxDB v2.
//
// Every power, volume, mute, picture mute and input notification becomes a
// point in the tv_state measurement, tagged with the registry name of the
// display and the four-letter command:
//
//	tv_state,command=VOLU,device=lounge volume=12i 1718000000000000000
package history
