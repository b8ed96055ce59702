package edf

import (
	"bytes"
	"strings"
	"testing"
)

func header(version, patient, recording, date, clock string) []byte {
	var b bytes.Buffer
	field := func(s string, n int) {
		b.WriteString(s)
		b.WriteString(strings.Repeat(" ", n-len(s)))
	}
	field(version, versionLen)
	field(patient, patientLen)
	field(recording, recordingLen)
	b.WriteString(date)
	b.WriteString(clock)
	return b.Bytes()
}

func TestAnonymize_BlanksIdentifyingFields(t *testing.T) {
	in := header("0", "pid-42 M 05-MAY-1951 Holger_Danske",
		"Startdate 12-DEC-2023 hosp-3 tech-1 amp-7", "12.12.23", "23.10.00")
	in = append(in, []byte("signal bytes here")...)

	out, err := Anonymize(in)
	if err != nil {
		t.Fatalf("Anonymize returned error: %v", err)
	}

	if bytes.Contains(out, []byte("Holger_Danske")) || bytes.Contains(out, []byte("hosp-3")) {
		t.Fatalf("identifying fields survived anonymization: %q", out[:headerLen])
	}
	patient := strings.TrimRight(string(out[versionLen:versionLen+patientLen]), " ")
	if patient != anonPatient {
		t.Fatalf("patient field = %q, want %q", patient, anonPatient)
	}
	recording := strings.TrimRight(string(out[versionLen+patientLen:versionLen+patientLen+recordingLen]), " ")
	if recording != anonRecording {
		t.Fatalf("recording field = %q, want %q", recording, anonRecording)
	}
	if got := string(out[168:176]); got != anonDate {
		t.Fatalf("start date = %q, want %q", got, anonDate)
	}
	if got := string(out[176:184]); got != anonTime {
		t.Fatalf("start time = %q, want %q", got, anonTime)
	}
	if !bytes.HasSuffix(out, []byte("signal bytes here")) {
		t.Fatalf("signal data was modified")
	}
}

func TestAnonymize_DoesNotMutateInput(t *testing.T) {
	in := header("0", "secret", "Startdate 01-JAN-2020 a b c", "01.01.20", "00.00.01")
	orig := bytes.Clone(in)
	if _, err := Anonymize(in); err != nil {
		t.Fatalf("Anonymize returned error: %v", err)
	}
	if !bytes.Equal(in, orig) {
		t.Fatalf("Anonymize mutated its input")
	}
}

func TestAnonymize_RejectsNonEDF(t *testing.T) {
	if _, err := Anonymize([]byte("too short")); err == nil {
		t.Fatalf("Anonymize accepted a truncated header")
	}
	in := header("MAGIC", "p", "r", "01.01.20", "00.00.00")
	if _, err := Anonymize(in); err == nil {
		t.Fatalf("Anonymize accepted a non-EDF version field")
	}
}
