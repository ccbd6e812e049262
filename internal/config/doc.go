// Package config manages the bravia configuration file.
//
// The file records known displays by name, CLI preferences and the
// settings of bravia-bridge. It follows OS-specific conventions for its
// location:
//   - Linux: $XDG_CONFIG_HOME/bravia/config.yaml or $HOME/.config/bravia/config.yaml
//   - macOS: $HOME/.config/bravia/config.yaml
//   - Windows: %LOCALAPPDATA%\bravia\config.yaml
//
// # Usage Example
//
//	reg, err := config.LoadRegistry()
//	if err != nil {
//	    return err
//	}
//	target, err := reg.Resolve(deviceFlag)
//	...
//	reg.UpdateDeviceLastSeen(target.Name, target.Address)
//	err = reg.Save()
//
// # Format
//
//	version: 1
//	devices:
//	  lounge:
//	    address: 192.168.1.20
//	    model: KD-55X85J
//	preferences:
//	  default_device: lounge
//	  discover_wait: 3
//	bridge:
//	  listen: ":8080"
//	  mqtt:
//	    broker: tcp://localhost:1883
//	  influxdb:
//	    url: http://localhost:8086
//	    org: home
//	    bucket: tv
//
// Saves are atomic (temporary file and rename) and the file is created
// with mode 0600.
package config
