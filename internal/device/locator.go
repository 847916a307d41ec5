package device

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.bug.st/serial/enumerator"
)

// PortLister enumerates the serial ports attached to the host.
type PortLister func() ([]*enumerator.PortDetails, error)

// sysfsRoot is where Linux exposes USB descriptors.
var sysfsRoot = "/sys"

// knownBoards names USB adapters by vendor id, or by vendor:product id.
// The enumerator leaves Product empty on Linux and macOS, so these ids are
// what identifies a board there when sysfs has no product string.
var knownBoards = map[string]string{
	"2341":      "Arduino",
	"2A03":      "Arduino",
	"1A86:7523": "USB-SERIAL CH340",
	"1A86:5523": "USB-SERIAL CH341",
}

// SystemPorts lists the host's serial ports with USB descriptions filled in.
func SystemPorts() ([]*enumerator.PortDetails, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}
	if runtime.GOOS == "linux" {
		fillSysfsDescriptions(ports, sysfsRoot)
	}
	return ports, nil
}

// fillSysfsDescriptions sets Product from the USB device's manufacturer and
// product files for every USB port that has none.
func fillSysfsDescriptions(ports []*enumerator.PortDetails, root string) {
	for _, p := range ports {
		if p == nil || !p.IsUSB || p.Product != "" {
			continue
		}
		if desc := sysfsDescription(root, filepath.Base(p.Name)); desc != "" {
			p.Product = desc
		}
	}
}

// sysfsDescription walks up from /sys/class/tty/<tty>/device to the USB
// device directory, the first one holding a product file.
func sysfsDescription(root, tty string) string {
	dir, err := filepath.EvalSymlinks(filepath.Join(root, "class", "tty", tty, "device"))
	if err != nil {
		return ""
	}
	for i := 0; i < 4 && dir != "/" && dir != "."; i++ {
		product := readAttr(filepath.Join(dir, "product"))
		if product != "" {
			if manufacturer := readAttr(filepath.Join(dir, "manufacturer")); manufacturer != "" {
				return manufacturer + " " + product
			}
			return product
		}
		dir = filepath.Dir(dir)
	}
	return ""
}

func readAttr(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// Describe returns the human-readable description of a port: the USB product
// string when known, otherwise the name of a recognised vendor/product id.
func Describe(p *enumerator.PortDetails) string {
	if p.Product != "" {
		return p.Product
	}
	if !p.IsUSB {
		return ""
	}
	vid, pid := strings.ToUpper(p.VID), strings.ToUpper(p.PID)
	if name, ok := knownBoards[vid+":"+pid]; ok {
		return name
	}
	return knownBoards[vid]
}

// LocatePort returns the first port whose description contains one of the
// identifiers, or fallback when none matches. It never fails: enumeration
// errors are logged and degrade to fallback.
func LocatePort(list PortLister, identifiers []string, fallback string) string {
	ports, err := list()
	if err != nil {
		log.Printf("[locator] port enumeration failed: %v", err)
		ports = nil
	}
	for _, p := range ports {
		if p == nil {
			continue
		}
		desc := Describe(p)
		for _, id := range identifiers {
			if id != "" && strings.Contains(desc, id) {
				log.Printf("[locator] Detected sensor board on %s (%s)", p.Name, desc)
				return p.Name
			}
		}
	}
	log.Printf("[locator] No sensor board found, falling back to default %s", fallback)
	return fallback
}
