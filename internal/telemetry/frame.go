// Package telemetry publishes arbitrated commands off the control loop:
// to the structured log, and as a status frame on a CAN bus.
package telemetry

import (
	"fmt"
	"math"

	"github.com/san-kum/latctl/internal/lateral"
	"go.einride.tech/can"
)

// DefaultFrameID is the arbitration status message id.
const DefaultFrameID uint32 = 0x2E4

const (
	frameLength = 6

	torqueScale = 32767.0
	angleScale  = 10.0 // 0.1 deg per bit

	bitTorque    = 0
	bitAngle     = 16
	bitSelected  = 32
	bitActive    = 40
	bitSaturated = 41

	selectedNone = 0xFF
)

// Status is the decoded content of a status frame.
type Status struct {
	Torque          float64
	DesiredAngleDeg float64
	Selected        lateral.ControllerID
	Active          bool
	Saturated       bool
}

func scaleInt16(v, scale float64) int64 {
	if math.IsNaN(v) {
		return 0
	}
	return int64(lateral.Clip(math.Round(v*scale), math.MinInt16, math.MaxInt16))
}

// EncodeFrame packs a command into a little-endian status frame.
func EncodeFrame(id uint32, cmd lateral.Command) can.Frame {
	f := can.Frame{ID: id, Length: frameLength}

	f.Data.SetSignedBitsLittleEndian(bitTorque, 16, scaleInt16(cmd.Torque, torqueScale))
	f.Data.SetSignedBitsLittleEndian(bitAngle, 16, scaleInt16(cmd.DesiredAngleDeg, angleScale))

	sel := uint64(selectedNone)
	if cmd.Diagnostics.Selected.Valid() {
		sel = uint64(cmd.Diagnostics.Selected)
	}
	f.Data.SetUnsignedBitsLittleEndian(bitSelected, 8, sel)
	f.Data.SetBit(bitActive, cmd.Diagnostics.Active)
	f.Data.SetBit(bitSaturated, cmd.Diagnostics.Saturated)
	return f
}

// DecodeFrame unpacks a status frame.
func DecodeFrame(f can.Frame) (Status, error) {
	if f.Length < frameLength {
		return Status{}, fmt.Errorf("telemetry: frame 0x%X expects %d bytes, got %d", f.ID, frameLength, f.Length)
	}
	s := Status{
		Torque:          float64(f.Data.SignedBitsLittleEndian(bitTorque, 16)) / torqueScale,
		DesiredAngleDeg: float64(f.Data.SignedBitsLittleEndian(bitAngle, 16)) / angleScale,
		Selected:        lateral.NoController,
		Active:          f.Data.Bit(bitActive),
		Saturated:       f.Data.Bit(bitSaturated),
	}
	if sel := f.Data.UnsignedBitsLittleEndian(bitSelected, 8); sel != selectedNone {
		id := lateral.ControllerID(sel)
		if !id.Valid() {
			return Status{}, fmt.Errorf("%w: %d", lateral.ErrInvalidController, sel)
		}
		s.Selected = id
	}
	return s, nil
}
