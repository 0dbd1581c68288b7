package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/san-kum/latctl/internal/lateral"
	"github.com/san-kum/latctl/internal/logging"
	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, cmd lateral.Command) error
}

// LogPublisher writes each command as a debug log entry.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: logging.OrNop(log).Named("telemetry")}
}

func (p *LogPublisher) Publish(ctx context.Context, cmd lateral.Command) error {
	d := cmd.Diagnostics
	p.log.Debug("command",
		zap.Float64("torque", cmd.Torque),
		zap.Float64("desired_angle_deg", cmd.DesiredAngleDeg),
		zap.Bool("active", d.Active),
		zap.Stringer("selected", d.Selected),
		zap.Bool("saturated", d.Saturated),
	)
	return nil
}

// FrameTransmitter is the send side of a CAN bus.
type FrameTransmitter interface {
	TransmitFrame(ctx context.Context, frame can.Frame) error
}

// CANPublisher encodes each command as a status frame and transmits it.
type CANPublisher struct {
	tx   FrameTransmitter
	id   uint32
	conn net.Conn
}

func NewCANPublisher(tx FrameTransmitter, id uint32) *CANPublisher {
	return &CANPublisher{tx: tx, id: id}
}

// DialSocketCAN opens a SocketCAN interface such as "can0" or "vcan0".
func DialSocketCAN(ctx context.Context, iface string, id uint32) (*CANPublisher, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("socketcan dial %s: %w", iface, err)
	}
	return &CANPublisher{
		tx:   socketcan.NewTransmitter(conn),
		id:   id,
		conn: conn,
	}, nil
}

func (p *CANPublisher) Publish(ctx context.Context, cmd lateral.Command) error {
	return p.tx.TransmitFrame(ctx, EncodeFrame(p.id, cmd))
}

func (p *CANPublisher) Close() error {
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Multi fans a command out to several publishers. Every publisher is tried;
// failures are joined.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, cmd lateral.Command) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, cmd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
