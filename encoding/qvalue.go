package encoding

import (
	"fmt"
	"strconv"
	"strings"
)

// QValue is a quality factor in [0, 1000], three decimal digits of
// precision represented as an integer to avoid floating-point comparisons,
// per spec §3. 1000 means q=1 (the default when ;q= is absent); 0 means
// "not acceptable".
type QValue int

const QValueMax QValue = 1000

// ParseQValue parses the value of a ";q=" parameter. It must match
// `0(\.\d{0,3})?` or `1(\.0{0,3})?`; anything else is invalid.
func ParseQValue(s string) (QValue, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("encoding: empty qvalue")
	}
	if s == "0" || s == "1" {
		if s == "1" {
			return QValueMax, nil
		}
		return 0, nil
	}
	if !strings.HasPrefix(s, "0.") && !strings.HasPrefix(s, "1.") {
		return 0, fmt.Errorf("encoding: invalid qvalue %q", s)
	}
	whole := s[0] == '1'
	frac := s[2:]
	if len(frac) == 0 || len(frac) > 3 {
		return 0, fmt.Errorf("encoding: invalid qvalue %q", s)
	}
	for _, c := range frac {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("encoding: invalid qvalue %q", s)
		}
	}
	if whole {
		for _, c := range frac {
			if c != '0' {
				return 0, fmt.Errorf("encoding: invalid qvalue %q", s)
			}
		}
		return QValueMax, nil
	}
	// pad to 3 digits then parse as an integer in [0, 999]
	padded := (frac + "000")[:3]
	n, err := strconv.Atoi(padded)
	if err != nil {
		return 0, fmt.Errorf("encoding: invalid qvalue %q", s)
	}
	return QValue(n), nil
}
