package control

import (
	"context"

	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/protocol"
)

// Scene settings accepted by SetScene
const (
	SceneAuto        = "auto"
	SceneAuto24pSync = "auto24pSync"
	SceneGeneral     = "general"
)

// Scenes lists the values SetScene accepts.
var Scenes = []string{SceneAuto, SceneAuto24pSync, SceneGeneral}

// Scene returns the current scene setting, or "" when the current input
// has none.
func (c *Controller) Scene(ctx context.Context) (string, error) {
	pkt, err := c.enquire(ctx, protocol.CommandScene, "")
	if err != nil {
		return "", err
	}
	if pkt.Parameters == protocol.NotAvailableParameters {
		return "", nil
	}
	return trimHash(pkt.Parameters), nil
}

// SetScene changes the scene setting. It returns "" when the display
// reports the setting as not available for the current input.
func (c *Controller) SetScene(ctx context.Context, scene string) (string, error) {
	valid := false
	for _, s := range Scenes {
		if s == scene {
			valid = true
			break
		}
	}
	if !valid {
		return "", device.NewValidationError("scene must be one of %v, got %q", Scenes, scene)
	}

	pkt, err := c.control(ctx, protocol.CommandScene, padHash(scene))
	if err != nil {
		return "", err
	}
	switch pkt.Parameters {
	case protocol.SuccessParameters:
		return scene, nil
	case protocol.NotAvailableParameters:
		return "", nil
	default:
		return "", device.NewUnexpectedResponseError(protocol.CommandScene, pkt.Parameters)
	}
}
