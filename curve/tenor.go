package curve

import (
	"strconv"
	"strings"
)

// TenorToYears converts tenor labels like "1W", "3M", "10Y" to year
// fractions. Bare numbers are read as years. Unknown units are a
// ValidationError.
func TenorToYears(tenor string) (float64, error) {
	label := strings.TrimSpace(strings.ToUpper(tenor))
	if label == "" {
		return 0, validationErrorf("empty tenor label")
	}

	unit := label[len(label)-1]
	if unit >= '0' && unit <= '9' {
		v, err := strconv.ParseFloat(label, 64)
		if err != nil {
			return 0, validationErrorf("unparseable tenor %q", tenor)
		}
		return v, nil
	}

	v, err := strconv.ParseFloat(label[:len(label)-1], 64)
	if err != nil {
		return 0, validationErrorf("unparseable tenor %q", tenor)
	}
	switch unit {
	case 'D':
		return v / 365.0, nil
	case 'W':
		return v * 7.0 / 365.0, nil
	case 'M':
		return v / 12.0, nil
	case 'Y':
		return v, nil
	}
	return 0, validationErrorf("unknown tenor unit in %q", tenor)
}
