package command

import "strconv"

// formatScore renders a ZSET score the way ZSCORE/ZRANGE WITHSCORES/
// ZINCRBY reply with it: a decimal with no unnecessary trailing digits,
// matching Redis's float formatting convention.
func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseIntArg(b []byte) (int, error) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func parseFloatArg(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
