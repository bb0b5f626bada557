package session

import "time"

// PrefixLength is the number of leading characters compared between serials
const PrefixLength = 10

// ScanRecord is a completed comparison of a sensor serial and a package serial
type ScanRecord struct {
	ID            string    `json:"id"`
	Operator      string    `json:"operator"`
	SensorSerial  string    `json:"sensor_serial"`
	PackageSerial string    `json:"package_serial"`
	Timestamp     time.Time `json:"timestamp"`
	Match         bool      `json:"match"`
}

// Field identifies one of the three input fields of the scan form
type Field string

const (
	FieldOperator      Field = "operator"
	FieldSensorSerial  Field = "sensorSerial"
	FieldPackageSerial Field = "packageSerial"
)

// Form holds the current, not yet submitted, input
type Form struct {
	Operator      string `json:"operator"`
	SensorSerial  string `json:"sensor_serial"`
	PackageSerial string `json:"package_serial"`
}

// Match reports whether the first PrefixLength characters of both serials are equal
func Match(sensorSerial, packageSerial string) bool {
	return prefix(sensorSerial, PrefixLength) == prefix(packageSerial, PrefixLength)
}

// prefix returns the first n characters of s, or all of s when it is shorter
func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
