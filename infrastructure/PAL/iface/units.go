package iface

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	utunPrefix = "utun"
	// unitSearchRange is how many utun units are probed when no name is given.
	unitSearchRange = 16
)

// candidateUnits returns the utun units to try, in order. An explicit
// "utunN" name pins the search to unit N.
func candidateUnits(name string) ([]uint32, error) {
	if name == "" {
		units := make([]uint32, unitSearchRange)
		for k := range units {
			units[k] = uint32(k)
		}
		return units, nil
	}
	digits, ok := strings.CutPrefix(name, utunPrefix)
	if !ok || digits == "" {
		return nil, fmt.Errorf("invalid utun name %q: want %sN", name, utunPrefix)
	}
	unit, err := strconv.ParseUint(digits, 10, 31)
	if err != nil {
		return nil, fmt.Errorf("invalid utun name %q: %w", name, err)
	}
	return []uint32{uint32(unit)}, nil
}

// scUnit maps utun unit N to the sc_unit of its control address. sc_unit 0
// asks the kernel to pick.
func scUnit(unit uint32) uint32 { return unit + 1 }
