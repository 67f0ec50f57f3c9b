package control

import (
	"context"
	"fmt"

	"github.com/qmuntal/stateless"
	"github.com/rs/zerolog/log"

	"github.com/McTechFly/proxy-usb-hid/gadget"
	"github.com/McTechFly/proxy-usb-hid/mapping"
	"github.com/McTechFly/proxy-usb-hid/rawgadget"
	"github.com/McTechFly/proxy-usb-hid/report"
)

// Server owns one raw-gadget session's EP0 loop. It is created once per
// attach and is not safe for concurrent use by more than one goroutine.
type Server struct {
	dev     *rawgadget.Device
	devices []*mapping.InputDevice

	fsm       *stateless.StateMachine
	generator *report.Generator
	genDone   chan error
}

// NewServer creates an EP0 dispatcher for dev, remapping events from
// devices onto the two virtual joysticks once the host configures the
// gadget.
func NewServer(dev *rawgadget.Device, devices []*mapping.InputDevice) *Server {
	return &Server{dev: dev, devices: devices, fsm: newGadgetFSM()}
}

// Run executes the control-transfer loop until ctx is cancelled or a
// fatal transport error occurs. CONNECT/SUSPEND/RESUME events are
// ignored; RESET and DISCONNECT drive the attach state machine back to
// Idle so a subsequent SET_CONFIGURATION is honored again. CONTROL
// events are dispatched to handleControl.
func (s *Server) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		ev, err := s.dev.EventFetch()
		if err != nil {
			return fmt.Errorf("control.Run: %w", err)
		}
		switch ev.Type {
		case rawgadget.EventReset, rawgadget.EventDisconnect:
			if ok, _ := s.fsm.CanFire(triggerReset); ok {
				_ = s.fsm.FireCtx(ctx, triggerReset)
			}
			continue
		case rawgadget.EventControl:
		default:
			continue
		}
		if err := s.handleControl(ctx, ev.Ctrl); err != nil {
			return fmt.Errorf("control.Run: %w", err)
		}
	}
}

// handleControl answers one setup packet: it computes the reply (or
// "unhandled"), then performs the data/status stage framing common to
// every request: IN replies are clamped to wLength and written back on
// EP0, OUT requests have their data phase drained with EP0Read, and
// anything unhandled stalls EP0.
func (s *Server) handleControl(ctx context.Context, ctrl rawgadget.ControlRequest) error {
	data, handled, err := s.dispatch(ctx, ctrl)
	if err != nil {
		return err
	}
	if !handled {
		return s.dev.EP0Stall()
	}
	if ctrl.BRequestType&dirMask == dirIn {
		if len(data) > int(ctrl.WLength) {
			data = data[:ctrl.WLength]
		}
		_, err := s.dev.EP0Write(data)
		return err
	}
	scratch := make([]byte, ctrl.WLength)
	_, err = s.dev.EP0Read(scratch)
	return err
}

func (s *Server) dispatch(ctx context.Context, ctrl rawgadget.ControlRequest) ([]byte, bool, error) {
	switch ctrl.BRequestType & typeMask {
	case typeStd:
		return s.handleStandard(ctx, ctrl)
	case typeCls:
		return s.handleClass(ctrl)
	default:
		return nil, false, nil
	}
}

func (s *Server) handleStandard(ctx context.Context, ctrl rawgadget.ControlRequest) ([]byte, bool, error) {
	switch ctrl.BRequest {
	case reqGetDescriptor:
		return getDescriptor(ctrl)
	case reqSetConfiguration:
		if err := s.onSetConfiguration(ctx); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	case reqGetInterface:
		return []byte{0}, true, nil
	default:
		return nil, false, nil
	}
}

func getDescriptor(ctrl rawgadget.ControlRequest) ([]byte, bool, error) {
	descType := byte(ctrl.WValue >> 8)
	index := byte(ctrl.WValue)

	switch descType {
	case gadget.TypeDevice:
		data, err := gadget.Serialize(gadget.Device)
		return data, err == nil, err
	case gadget.TypeDeviceQualifier:
		data, err := gadget.Serialize(gadget.Qualifier)
		return data, err == nil, err
	case gadget.TypeConfig:
		data, err := gadget.BuildConfiguration(false)
		return data, err == nil, err
	case gadget.TypeOtherSpeedConfig:
		data, err := gadget.BuildConfiguration(true)
		return data, err == nil, err
	case gadget.TypeString:
		return gadget.BuildStringDescriptor(int(index)), true, nil
	case gadget.TypeHIDReport:
		if ctrl.WIndex == 0 {
			return gadget.ReportDescriptorFor(0), true, nil
		}
		return gadget.ReportDescriptorFor(1), true, nil
	default:
		return nil, false, nil
	}
}

// onSetConfiguration enables both interrupt-IN endpoints, reports the
// gadget's bus power draw, tells the UDC the configuration is active,
// and starts the HID report generator exactly once per attach. The
// attach state machine (control/state.go) makes this idempotent: a
// second SET_CONFIGURATION while already Configured is acknowledged
// without re-running endpoint bring-up, matching spec.md §4.3's "one-way
// transition per attach".
func (s *Server) onSetConfiguration(ctx context.Context) error {
	if ok, err := s.fsm.CanFire(triggerConfigure); err != nil {
		return fmt.Errorf("control.onSetConfiguration: %w", err)
	} else if !ok {
		return nil
	}

	ep1, err := s.dev.EPEnable(rawgadget.EndpointDescriptor{
		Address:       gadget.Endpoint0.BEndpointAddress,
		Attributes:    gadget.Endpoint0.BmAttributes,
		MaxPacketSize: gadget.Endpoint0.WMaxPacketSize,
		Interval:      gadget.Endpoint0.BInterval,
	})
	if err != nil {
		return fmt.Errorf("control.onSetConfiguration: enable ep1: %w", err)
	}
	ep2, err := s.dev.EPEnable(rawgadget.EndpointDescriptor{
		Address:       gadget.Endpoint1.BEndpointAddress,
		Attributes:    gadget.Endpoint1.BmAttributes,
		MaxPacketSize: gadget.Endpoint1.WMaxPacketSize,
		Interval:      gadget.Endpoint1.BInterval,
	})
	if err != nil {
		return fmt.Errorf("control.onSetConfiguration: enable ep2: %w", err)
	}
	if err := s.dev.VBusDraw(uint32(gadget.Config.BMaxPower)); err != nil {
		return fmt.Errorf("control.onSetConfiguration: vbus draw: %w", err)
	}
	if err := s.dev.Configure(); err != nil {
		return fmt.Errorf("control.onSetConfiguration: configure: %w", err)
	}
	if err := s.fsm.FireCtx(ctx, triggerConfigure); err != nil {
		return fmt.Errorf("control.onSetConfiguration: %w", err)
	}

	s.generator = report.New(s.dev, s.devices, [mapping.VirtualJoysticks]int{ep1, ep2})
	s.genDone = make(chan error, 1)
	go func() {
		err := s.generator.Run(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("control: HID report generator failed")
		}
		s.genDone <- err
	}()
	log.Info().Msg("control: configured, HID report generator started")
	return nil
}

func (s *Server) handleClass(ctrl rawgadget.ControlRequest) ([]byte, bool, error) {
	switch ctrl.BRequest {
	case reqHIDSetReport, reqHIDSetIdle, reqHIDSetProtocol:
		return nil, true, nil
	default:
		return nil, false, nil
	}
}
