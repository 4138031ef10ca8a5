// platform/linux.go
//go:build linux && !rp2040 && !rp2350

package platform

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"servolink-go/types"
)

// LinuxPins claims switch input lines through the Linux GPIO character
// device. Lines are requested with pull-up to match panel switches
// wired to ground.
type LinuxPins struct {
	chip  *gpiocdev.Chip
	lines map[string]*gpiocdev.Line
}

// OpenLinuxPins opens the chip and requests one input line per switch
// id. On any failure everything already claimed is released.
func OpenLinuxPins(chipName string, pins map[string]int) (*LinuxPins, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}
	l := &LinuxPins{chip: chip, lines: make(map[string]*gpiocdev.Line, len(pins))}
	for id, offset := range pins {
		line, err := chip.RequestLine(offset, gpiocdev.AsInput, gpiocdev.WithPullUp)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("request pin %d for %s: %w", offset, id, err)
		}
		l.lines[id] = line
	}
	return l, nil
}

// Pins returns the claimed lines as capability handles keyed by
// switch id.
func (l *LinuxPins) Pins() map[string]types.InputPin {
	out := make(map[string]types.InputPin, len(l.lines))
	for id, line := range l.lines {
		out[id] = &linuxPin{line: line}
	}
	return out
}

// Close releases every claimed line and the chip.
func (l *LinuxPins) Close() error {
	var firstErr error
	for _, line := range l.lines {
		if err := line.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.lines = nil
	if l.chip != nil {
		if err := l.chip.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		l.chip = nil
	}
	return firstErr
}

type linuxPin struct {
	line *gpiocdev.Line
}

// Get returns the electrical level; read errors report high (switch
// off under pull-up logic).
func (p *linuxPin) Get() bool {
	v, err := p.line.Value()
	if err != nil {
		return true
	}
	return v != 0
}

// SysfsPWM drives one hardware PWM channel through /sys/class/pwm.
type SysfsPWM struct {
	dir string
}

// OpenSysfsPWM exports the channel on the given pwmchip if needed and
// returns its handle.
func OpenSysfsPWM(chip, channel int) (*SysfsPWM, error) {
	base := fmt.Sprintf("/sys/class/pwm/pwmchip%d", chip)
	dir := filepath.Join(base, fmt.Sprintf("pwm%d", channel))
	if _, err := os.Stat(dir); err != nil {
		if err := os.WriteFile(filepath.Join(base, "export"),
			[]byte(strconv.Itoa(channel)), 0o644); err != nil {
			return nil, fmt.Errorf("export pwm%d on %s: %w", channel, base, err)
		}
		// udev needs a moment to create the channel attributes.
		time.Sleep(100 * time.Millisecond)
	}
	return &SysfsPWM{dir: dir}, nil
}

func (p *SysfsPWM) write(attr, val string) {
	if err := os.WriteFile(filepath.Join(p.dir, attr), []byte(val), 0o644); err != nil {
		log.Printf("pwm write %s/%s: %v", p.dir, attr, err)
	}
}

func (p *SysfsPWM) Configure(freqHz uint32) error {
	if freqHz == 0 {
		return fmt.Errorf("pwm frequency 0")
	}
	periodNs := uint64(1_000_000_000) / uint64(freqHz)
	if err := os.WriteFile(filepath.Join(p.dir, "period"),
		[]byte(strconv.FormatUint(periodNs, 10)), 0o644); err != nil {
		return fmt.Errorf("set period on %s: %w", p.dir, err)
	}
	p.write("enable", "1")
	return nil
}

func (p *SysfsPWM) SetPulseWidth(us uint32) {
	p.write("duty_cycle", strconv.FormatUint(uint64(us)*1000, 10))
}

func (p *SysfsPWM) Disable() {
	p.write("duty_cycle", "0")
}
