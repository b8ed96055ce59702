// Package edf blanks identifying fields in EDF(+) recording headers before
// they are uploaded anywhere.
package edf

import (
	"bytes"
	"fmt"
)

// EDF fixed header layout (bytes): 0-7 version, 8-87 patient identification,
// 88-167 recording identification, 168-175 start date, 176-183 start time.
const (
	versionLen   = 8
	patientLen   = 80
	recordingLen = 80
	dateLen      = 8
	headerLen    = versionLen + patientLen + recordingLen + dateLen + dateLen
)

// Replacement fields. Patient ID, sex, birthdate and name become anonymous
// placeholders; the recording start collapses to the epoch. Events and
// channel names are left untouched.
const (
	anonPatient   = "X X X X_X"
	anonRecording = "Startdate 01-JAN-1970 X X X"
	anonDate      = "01.01.70"
	anonTime      = "00.00.00"
)

// Anonymize returns a copy of data with the identifying header fields
// blanked. The input must carry a plain EDF(+) header; anything else is
// rejected so callers cannot silently upload identifiable data unmarked.
func Anonymize(data []byte) ([]byte, error) {
	if len(data) < headerLen {
		return nil, fmt.Errorf("EDF header truncated: %d bytes, need at least %d", len(data), headerLen)
	}
	version := bytes.TrimRight(data[:versionLen], " ")
	if !bytes.Equal(version, []byte("0")) {
		return nil, fmt.Errorf("not an EDF file: version field %q", version)
	}

	out := bytes.Clone(data)
	offset := versionLen
	offset += copy(out[offset:], pad(anonPatient, patientLen))
	offset += copy(out[offset:], pad(anonRecording, recordingLen))
	offset += copy(out[offset:], anonDate)
	copy(out[offset:], anonTime)
	return out, nil
}

// pad right-pads s with spaces to exactly n ASCII bytes.
func pad(s string, n int) []byte {
	field := make([]byte, n)
	for i := range field {
		field[i] = ' '
	}
	copy(field, s)
	return field
}
