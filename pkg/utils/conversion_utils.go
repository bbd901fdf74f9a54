package utils

import "strconv"

// Int64ToStr converts an int64 to its decimal string form. Used by the
// spreadsheet exporters for ID columns.
func Int64ToStr(num int64) string {
	return strconv.FormatInt(num, 10)
}

// StrToInt64 parses a decimal string into an int64.
func StrToInt64(s string) (int64, error) {
	num, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return num, nil
}
