// Package bytesize provides byte size parsing and formatting for quota math
// and configuration values.
package bytesize

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteSize represents a size in bytes that can be unmarshaled from
// human-readable strings like "1Gi", "500Mi", "100MB", or plain numbers.
//
// Binary units (Ki/Mi/Gi/Ti) multiply by 1024; decimal units (K/M/G/T)
// multiply by 1000. Account quotas are expressed in gibibytes, so GiB is
// the constant the storage layer uses for quota-to-bytes conversion.
type ByteSize uint64

const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB
	TB ByteSize = 1000 * GB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
	TiB ByteSize = 1024 * GiB
)

// Parse parses a human-readable byte size string into a ByteSize value.
// Whitespace around the number and between number and unit is ignored.
func Parse(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	// Split at the first character that cannot be part of the number.
	cut := len(s)
	for i := 0; i < len(s); i++ {
		if c := s[i]; (c < '0' || c > '9') && c != '.' {
			cut = i
			break
		}
	}
	numStr := s[:cut]
	unit := strings.TrimSpace(s[cut:])

	if numStr == "" {
		return 0, fmt.Errorf("invalid byte size format: %q", s)
	}

	multiplier, err := unitMultiplier(unit)
	if err != nil {
		return 0, err
	}

	if strings.Contains(numStr, ".") {
		num, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number in byte size: %q", numStr)
		}
		return ByteSize(num * float64(multiplier)), nil
	}

	num, err := strconv.ParseUint(numStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number in byte size: %q", numStr)
	}
	return ByteSize(num) * multiplier, nil
}

// unitMultiplier resolves a unit suffix. The trailing "B" is optional, so
// "Ki" and "KiB" are equivalent; matching ignores case.
func unitMultiplier(unit string) (ByteSize, error) {
	switch strings.TrimSuffix(strings.ToLower(unit), "b") {
	case "":
		return B, nil
	case "k":
		return KB, nil
	case "m":
		return MB, nil
	case "g":
		return GB, nil
	case "t":
		return TB, nil
	case "ki":
		return KiB, nil
	case "mi":
		return MiB, nil
	case "gi":
		return GiB, nil
	case "ti":
		return TiB, nil
	}
	return 0, fmt.Errorf("unknown byte size unit: %q", unit)
}

// UnmarshalText implements encoding.TextUnmarshaler so ByteSize can be used
// directly in config structs decoded with mapstructure.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// String returns a human-readable representation of the byte size.
func (b ByteSize) String() string {
	switch {
	case b >= TiB:
		return fmt.Sprintf("%.2fTiB", float64(b)/float64(TiB))
	case b >= GiB:
		return fmt.Sprintf("%.2fGiB", float64(b)/float64(GiB))
	case b >= MiB:
		return fmt.Sprintf("%.2fMiB", float64(b)/float64(MiB))
	case b >= KiB:
		return fmt.Sprintf("%.2fKiB", float64(b)/float64(KiB))
	default:
		return fmt.Sprintf("%dB", uint64(b))
	}
}

// Uint64 returns the ByteSize as a uint64.
func (b ByteSize) Uint64() uint64 {
	return uint64(b)
}

// Int64 returns the ByteSize as an int64.
func (b ByteSize) Int64() int64 {
	return int64(b)
}
