package control

import (
	"fmt"

	"github.com/san-kum/latctl/internal/config"
	"github.com/san-kum/latctl/internal/lateral"
)

// Bank holds one facade per controller id, indexed by lateral.ControllerID.
type Bank [lateral.NumControllers]lateral.Controller

// NewBank validates cfg and constructs all four laws from its tuning.
func NewBank(cfg *config.Config) (Bank, error) {
	var b Bank
	if err := cfg.Validate(); err != nil {
		return b, err
	}
	veh := VehicleFromConfig(cfg.Vehicle)
	b[lateral.PID] = NewPID(veh, cfg.PID)
	b[lateral.INDI] = NewINDI(veh, cfg.INDI)
	b[lateral.LQR] = NewLQR(veh, cfg.LQR)
	b[lateral.Torque] = NewTorque(veh, cfg.Torque)
	return b, nil
}

// Get returns the facade for id.
func (b *Bank) Get(id lateral.ControllerID) (lateral.Controller, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %d", lateral.ErrInvalidController, int(id))
	}
	c := b[id]
	if c == nil {
		return nil, fmt.Errorf("%w: %s", lateral.ErrNotConfigured, id)
	}
	return c, nil
}

// ResetAll resets every configured facade.
func (b *Bank) ResetAll() {
	for _, c := range b {
		if c != nil {
			c.Reset()
		}
	}
}
