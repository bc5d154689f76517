package shotmux

import (
	"go.bug.st/serial"
)

// NewSerialShotMux creates a ShotMux backed by a real serial port at the
// given path using the provided serial options.
func NewSerialShotMux(path string, opts PortOptions) (*ShotMux[serial.Port], error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, err
	}

	return NewShotMux[serial.Port](port), nil
}

// NewUDPShotMux creates a ShotMux listening for connector datagrams on the
// given UDP address.
func NewUDPShotMux(addr string) (*ShotMux[*UDPPort], error) {
	port, err := NewUDPPort(addr)
	if err != nil {
		return nil, err
	}
	return NewShotMux[*UDPPort](port), nil
}
