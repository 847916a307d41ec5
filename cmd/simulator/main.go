// Sensor board simulator: writes sensor lines to the specified serial device.
// Use this for local testing when you don't have the real board.
//
// With -virtual, a socat pty pair is created first so the bridge can be
// pointed at the other end:
//
//	simulator -virtual -dev /tmp/ttyBoard -peer /tmp/ttyBridge
//	bridge -port /tmp/ttyBridge
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SensorBridge/internal/device"
	"SensorBridge/internal/util"
)

func main() {
	util.SetupLogger()

	dev := flag.String("dev", "/tmp/ttyBoard", "serial device to write sensor lines into")
	baud := flag.Int("baud", 9600, "baud rate")
	interval := flag.Duration("interval", 2*time.Second, "delay between lines")
	garbage := flag.Int("garbage", 5, "emit a malformed line about once every N lines (0 disables)")
	virtual := flag.Bool("virtual", false, "create a socat pty pair before writing")
	peer := flag.String("peer", "/tmp/ttyBridge", "other end of the socat pair (with -virtual)")
	flag.Parse()

	var socat *util.SocatManager
	if *virtual {
		socat = util.NewSocatManager()
		if err := socat.CreatePair(*dev, *peer); err != nil {
			log.Fatalf("create virtual serial pair: %v", err)
		}
		defer socat.Cleanup()
		if err := socat.WaitForLinks(5 * time.Second); err != nil {
			socat.Cleanup()
			log.Fatalf("virtual serial pair not ready: %v", err)
		}
	}

	stop := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		close(stop)
	}()

	board := device.NewSensorBoard("SIM01", *dev, *baud)
	if err := board.StartSimulation(stop, *interval, *garbage); err != nil {
		if socat != nil {
			socat.Cleanup()
		}
		log.Fatalf("simulation failed: %v", err)
	}
}
