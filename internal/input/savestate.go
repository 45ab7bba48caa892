package input

import (
	"bytes"
	"encoding/binary"
)

// Snapshot serializes both controllers' current and latched button
// state into a fixed little-endian layout, for save-state capture.
func (i *InputSystem) Snapshot() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, i.Controller1Buttons)
	binary.Write(buf, binary.LittleEndian, i.Controller2Buttons)
	binary.Write(buf, binary.LittleEndian, i.Controller1Latched)
	binary.Write(buf, binary.LittleEndian, i.Controller2Latched)
	binary.Write(buf, binary.LittleEndian, i.Controller1LatchState)
	binary.Write(buf, binary.LittleEndian, i.Controller2LatchState)
	return buf.Bytes()
}

// Restore reconstructs controller state from a buffer produced by
// Snapshot.
func (i *InputSystem) Restore(data []byte) error {
	buf := bytes.NewReader(data)
	fields := []interface{}{
		&i.Controller1Buttons, &i.Controller2Buttons,
		&i.Controller1Latched, &i.Controller2Latched,
		&i.Controller1LatchState, &i.Controller2LatchState,
	}
	for _, f := range fields {
		if err := binary.Read(buf, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}
