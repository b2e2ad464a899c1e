package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"bonafide-backend/internal/domain/certificate"
	"bonafide-backend/internal/domain/profile"
)

func strp(s string) *string { return &s }

func TestWriteRequests_CRLFReasonRoundTrips(t *testing.T) {
	at := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	reason := certificate.CleanText("Visa office asks for\r\nthe original copy\r\n")
	rejection := certificate.CleanText("Signature missing,\r\nplease resubmit")
	rows := []certificate.View{{Request: certificate.Request{
		RequestID: "c", Reason: reason, Status: certificate.StatusRejectedByTutor,
		RejectionReason: &rejection, CreatedAt: at, UpdatedAt: at,
	}}}

	var buf bytes.Buffer
	if err := WriteRequests(&buf, rows); err != nil {
		t.Fatalf("WriteRequests: %v", err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if recs[1][4] != reason || recs[1][4] != "Visa office asks for\nthe original copy" {
		t.Fatalf("reason = %q", recs[1][4])
	}
	if recs[1][6] != rejection {
		t.Fatalf("rejection reason = %q, want %q", recs[1][6], rejection)
	}
}

func TestWriteRequests_RoundTrip(t *testing.T) {
	at := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	rows := []certificate.View{
		{
			Request: certificate.Request{
				RequestID:       "0123456789abcdef0123456789abcdef",
				Reason:          "Visa, \"urgent\"\nsecond line",
				Status:          certificate.StatusRejectedByHOD,
				RejectionReason: strp("Missing, documents"),
				CreatedAt:       at,
				UpdatedAt:       at.Add(time.Hour),
			},
			FirstName:      "Asha",
			LastName:       "Rao",
			RegisterNumber: strp("CS001"),
			Department:     strp("Computer Science, UG"),
		},
		{Request: certificate.Request{RequestID: "b", Reason: "plain", Status: certificate.StatusPending, CreatedAt: at, UpdatedAt: at}},
	}

	var buf bytes.Buffer
	if err := WriteRequests(&buf, rows); err != nil {
		t.Fatalf("WriteRequests: %v", err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(recs) != 3 || strings.Join(recs[0], "|") != strings.Join(RequestHeader, "|") {
		t.Fatalf("records = %q", recs)
	}
	want := []string{
		"0123456789abcdef0123456789abcdef", "Asha Rao", "CS001", "Computer Science, UG",
		"Visa, \"urgent\"\nsecond line", "rejected_by_hod", "Missing, documents",
		"2025-02-03T04:05:06Z", "2025-02-03T05:05:06Z",
	}
	for i := range want {
		if recs[1][i] != want[i] {
			t.Fatalf("field %d = %q, want %q", i, recs[1][i], want[i])
		}
	}
	if recs[2][2] != "" || recs[2][6] != "" {
		t.Fatalf("null fields should be empty: %q", recs[2])
	}
}

func TestWriteUsers(t *testing.T) {
	users := []profile.Profile{{ID: "u1", FirstName: "Tara", LastName: "Iyer", Email: "t@x.edu", Role: profile.RoleTutor, Department: strp("Mech")}}
	var buf bytes.Buffer
	if err := WriteUsers(&buf, users); err != nil {
		t.Fatalf("WriteUsers: %v", err)
	}
	recs, _ := csv.NewReader(&buf).ReadAll()
	if len(recs) != 2 || strings.Join(recs[1], ",") != "u1,Tara Iyer,t@x.edu,tutor,Mech," {
		t.Fatalf("records = %q", recs)
	}
}

func TestFilename(t *testing.T) {
	if got := Filename("requests", time.Date(2025, 9, 1, 23, 0, 0, 0, time.UTC)); got != "requests-2025-09-01.csv" {
		t.Fatalf("Filename = %q", got)
	}
}
