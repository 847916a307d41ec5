// Package device implements the sensor board reader, the serial-connected
// microcontroller that prints temperature, humidity, gas and rain readings.
package device

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"time"

	"SensorBridge/internal/model"
	"SensorBridge/internal/parser"
)

// SensorBoard represents the serial-connected microcontroller.
type SensorBoard struct {
	ID     string
	Device string
	Baud   int
	Serial *SerialDevice
}

// NewSensorBoard creates a new sensor board handler.
func NewSensorBoard(id, device string, baud int) *SensorBoard {
	return &SensorBoard{ID: id, Device: device, Baud: baud}
}

// --- Implementation of Device interface ---

// Open initializes the board's serial connection.
func (board *SensorBoard) Open() error {
	if board.Serial != nil {
		return nil
	}
	serialDevice, err := NewSerialDevice(board.Device, board.Baud)
	if err != nil {
		return fmt.Errorf("open sensor board serial failed: %w", err)
	}
	board.Serial = serialDevice
	log.Printf("[board %s] serial %s opened (baud %d)", board.ID, serialDevice.Name(), board.Baud)
	return nil
}

// Close terminates the serial connection safely.
func (board *SensorBoard) Close() error {
	if board.Serial == nil {
		return nil
	}
	err := board.Serial.Close()
	board.Serial = nil
	return err
}

// ReadLine reads a single line of data from the board.
func (board *SensorBoard) ReadLine(timeout time.Duration) (string, error) {
	if board.Serial == nil {
		return "", errors.New("sensor board serial not open")
	}
	return board.Serial.ReadLine(timeout)
}

// WriteLine writes a line to the board.
func (board *SensorBoard) WriteLine(line string) error {
	if board.Serial == nil {
		return errors.New("sensor board serial not open")
	}
	return board.Serial.WriteLine(line)
}

// --- Additional behavior ---

// OpenSensorBoard is an OpenFunc that opens the port as a SensorBoard.
func OpenSensorBoard(port string, baud int) (Device, error) {
	board := NewSensorBoard("board", port, baud)
	if err := board.Open(); err != nil {
		return nil, err
	}
	return board, nil
}

// SimulatedReading produces a plausible reading. Roughly one call in
// garbageEvery returns ok=false so callers can emit a malformed line.
func SimulatedReading(rng *rand.Rand, garbageEvery int) (model.Reading, bool) {
	if garbageEvery > 0 && rng.Intn(garbageEvery) == 0 {
		return model.Reading{}, false
	}
	return model.Reading{
		Temperature: strconv.FormatFloat(-5+rng.Float64()*40, 'f', 1, 64),
		Humidity:    strconv.Itoa(20 + rng.Intn(70)),
		Gases:       strconv.Itoa(100 + rng.Intn(400)),
		Rain:        strconv.Itoa(rng.Intn(1024)),
	}, true
}

// StartSimulation writes fake sensor lines over the serial interface until
// stop is closed. Every garbageEvery-th line on average is noise.
func (board *SensorBoard) StartSimulation(stop <-chan struct{}, interval time.Duration, garbageEvery int) error {
	if err := board.Open(); err != nil {
		return err
	}
	defer func() {
		if err := board.Close(); err != nil {
			log.Printf("[warning] Failed to close sensor board: %v", err)
		}
	}()

	fmt.Printf("[board %s] Simulator started on %s (baud %d)\n", board.ID, board.Device, board.Baud)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		message := "garbage data"
		if reading, ok := SimulatedReading(rng, garbageEvery); ok {
			message = parser.FormatReading(reading)
		}
		if err := board.WriteLine(message); err != nil {
			log.Printf("[board %s] simulate write error: %v", board.ID, err)
		} else {
			log.Printf("[board %s] simulate write: %s", board.ID, message)
		}

		select {
		case <-stop:
			fmt.Printf("[board %s] Simulation stopped.\n", board.ID)
			return nil
		case <-ticker.C:
		}
	}
}
