package device

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.bug.st/serial/enumerator"
)

func staticPorts(ports ...*enumerator.PortDetails) PortLister {
	return func() ([]*enumerator.PortDetails, error) { return ports, nil }
}

func TestLocatePortMatchesArduino(t *testing.T) {
	list := staticPorts(
		&enumerator.PortDetails{Name: "/dev/ttyS0", Product: "Built-in UART"},
		&enumerator.PortDetails{Name: "/dev/ttyACM0", IsUSB: true, Product: "Arduino Uno"},
	)
	got := LocatePort(list, []string{"Arduino", "CH340"}, "COM4")
	if got != "/dev/ttyACM0" {
		t.Fatalf("expected /dev/ttyACM0, got %s", got)
	}
}

func TestLocatePortMatchesCH340(t *testing.T) {
	list := staticPorts(
		&enumerator.PortDetails{Name: "COM3", Product: "USB-SERIAL CH340"},
		&enumerator.PortDetails{Name: "COM5", Product: "Arduino Mega"},
	)
	got := LocatePort(list, []string{"Arduino", "CH340"}, "COM4")
	if got != "COM3" {
		t.Fatalf("expected first matching port COM3, got %s", got)
	}
}

func TestLocatePortFallsBack(t *testing.T) {
	list := staticPorts(
		nil,
		&enumerator.PortDetails{Name: "/dev/ttyS0", Product: "Built-in UART"},
	)
	if got := LocatePort(list, []string{"Arduino", "CH340"}, "COM4"); got != "COM4" {
		t.Fatalf("expected fallback COM4, got %s", got)
	}
	if got := LocatePort(staticPorts(), []string{"Arduino"}, "COM4"); got != "COM4" {
		t.Fatalf("expected fallback on empty list, got %s", got)
	}
}

func TestLocatePortEnumerationError(t *testing.T) {
	list := func() ([]*enumerator.PortDetails, error) { return nil, errors.New("no access") }
	if got := LocatePort(list, []string{"Arduino"}, "/dev/ttyUSB0"); got != "/dev/ttyUSB0" {
		t.Fatalf("expected fallback, got %s", got)
	}
}

func TestLocatePortMatchesKnownUSBIDs(t *testing.T) {
	list := staticPorts(
		&enumerator.PortDetails{Name: "/dev/ttyS0"},
		&enumerator.PortDetails{Name: "/dev/ttyUSB0", IsUSB: true, VID: "1a86", PID: "7523"},
	)
	if got := LocatePort(list, []string{"Arduino", "CH340"}, "COM4"); got != "/dev/ttyUSB0" {
		t.Fatalf("expected CH340 by vid:pid, got %s", got)
	}
	list = staticPorts(&enumerator.PortDetails{Name: "/dev/ttyACM0", IsUSB: true, VID: "2341", PID: "0043"})
	if got := LocatePort(list, []string{"Arduino", "CH340"}, "COM4"); got != "/dev/ttyACM0" {
		t.Fatalf("expected Arduino by vendor id, got %s", got)
	}
	list = staticPorts(&enumerator.PortDetails{Name: "/dev/ttyUSB1", IsUSB: true, VID: "0403", PID: "6001"})
	if got := LocatePort(list, []string{"Arduino", "CH340"}, "COM4"); got != "COM4" {
		t.Fatalf("unknown adapter must not match, got %s", got)
	}
}

// makeTTY lays out /sys/class/tty/<tty>/device -> <usbDev>/<iface>[/<tty>]
// the way the kernel does for cdc_acm and usb-serial drivers.
func makeTTY(t *testing.T, root, tty string, nested bool, manufacturer, product string) {
	t.Helper()
	usbDev := filepath.Join(root, "devices", "usb1", "1-1."+tty)
	iface := filepath.Join(usbDev, "1-1:1.0")
	target := iface
	if nested {
		target = filepath.Join(iface, tty)
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if product != "" {
		if err := os.WriteFile(filepath.Join(usbDev, "product"), []byte(product+"\n"), 0o644); err != nil {
			t.Fatalf("write product: %v", err)
		}
	}
	if manufacturer != "" {
		if err := os.WriteFile(filepath.Join(usbDev, "manufacturer"), []byte(manufacturer+"\n"), 0o644); err != nil {
			t.Fatalf("write manufacturer: %v", err)
		}
	}
	classDir := filepath.Join(root, "class", "tty", tty)
	if err := os.MkdirAll(classDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Symlink(target, filepath.Join(classDir, "device")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
}

func TestFillSysfsDescriptions(t *testing.T) {
	root := t.TempDir()
	makeTTY(t, root, "ttyACM0", false, "Arduino (www.arduino.cc)", "Arduino Uno")
	makeTTY(t, root, "ttyUSB0", true, "", "USB Serial")

	ports := []*enumerator.PortDetails{
		{Name: "/dev/ttyACM0", IsUSB: true, VID: "2341", PID: "0043"},
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "1a86", PID: "7523"},
		{Name: "/dev/ttyS0"},
		{Name: "/dev/ttyUSB9", IsUSB: true},
	}
	fillSysfsDescriptions(ports, root)

	if ports[0].Product != "Arduino (www.arduino.cc) Arduino Uno" {
		t.Fatalf("unexpected ttyACM0 description %q", ports[0].Product)
	}
	if ports[1].Product != "USB Serial" {
		t.Fatalf("unexpected ttyUSB0 description %q", ports[1].Product)
	}
	if ports[2].Product != "" || ports[3].Product != "" {
		t.Fatalf("non-USB or missing ports must stay empty: %q %q", ports[2].Product, ports[3].Product)
	}

	list := staticPorts(ports[2], ports[0])
	if got := LocatePort(list, []string{"Arduino", "CH340"}, "COM4"); got != "/dev/ttyACM0" {
		t.Fatalf("expected sysfs description to select /dev/ttyACM0, got %s", got)
	}
	// CH340 boards often report a generic product string; the id table still matches.
	ports[1].Product = ""
	if got := LocatePort(staticPorts(ports[1]), []string{"CH340"}, "COM4"); got != "/dev/ttyUSB0" {
		t.Fatalf("expected vid:pid match for /dev/ttyUSB0, got %s", got)
	}
}
