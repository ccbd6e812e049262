// Package monitor implements the full screen terminal monitor.
//
// The monitor has two screens. The discovery screen browses mDNS for
// displays and accepts a typed IPv4 address. The dashboard connects to the
// chosen display, reads its state once and then follows it through the
// display's own notifications, so changes made with the remote show up
// immediately. Single keys toggle power, step the volume, mute audio or
// picture and cycle the HDMI inputs.
//
// Models follow the bubbletea Elm architecture: every display operation
// runs in a tea.Cmd and reports back as a message, and notifications are
// bridged from the device's reader goroutine through a buffered channel.
package monitor
