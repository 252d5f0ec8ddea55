package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	redisclient "github.com/careclinic/care-scheduling/internal/redis"
	"github.com/careclinic/care-scheduling/internal/scheduling"
)

// TestScriptedSession drives a full admin-then-patient session through the
// menus: publish a slot, sign up, log in, book it, view it, log out.
func TestScriptedSession(t *testing.T) {
	repo := scheduling.NewMemoryRepository()
	svc := scheduling.NewService(repo, redisclient.NoopLocker{})

	script := strings.Join([]string{
		"2",          // healthcare staff
		"admin123",   // admin secret
		"2",          // update available schedules
		"1",          // add a new schedule
		"2025-01-10", // date
		"09:00 AM",   // time
		"1",          // capacity
		"3",          // admin logout
		"1",          // patient portal
		"2",          // sign up
		"Ada Reyes",
		"34",
		"1991-03-14",
		"12 Elm Street",
		"555-0001",
		"pw123456",
		"pw123456",
		"1", // log in
		"555-0001",
		"pw123456",
		"1",           // schedule appointment
		"1",           // choose the only schedule
		"vaccination", // appointment type
		"2",           // view appointments
		"no",          // no cancellation
		"4",           // log out
		"3",           // exit
	}, "\n") + "\n"

	var out bytes.Buffer
	app := NewApp(svc, NewPrompter(strings.NewReader(script), &out), "admin123")

	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("run: %v\noutput:\n%s", err, out.String())
	}

	for _, want := range []string{
		"New schedule added.",
		"Account created successfully",
		"Welcome, Ada Reyes!",
		"Appointment scheduled successfully!",
		"vaccination on 2025-01-10 at 09:00 AM - pending",
		"Total appointments: 1",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q\noutput:\n%s", want, out.String())
		}
	}

	// Capacity 1 was consumed, so the slot is gone.
	slots, err := svc.ListAllSlots(context.Background())
	if err != nil {
		t.Fatalf("list all slots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("booked-out slot not swept: %v", slots)
	}
}

func TestAdminPortalRejectsWrongSecret(t *testing.T) {
	repo := scheduling.NewMemoryRepository()
	svc := scheduling.NewService(repo, redisclient.NoopLocker{})

	script := "2\nnot-the-secret\n3\n"
	var out bytes.Buffer
	app := NewApp(svc, NewPrompter(strings.NewReader(script), &out), "admin123")

	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "Invalid admin password.") {
		t.Fatalf("expected rejection message, got:\n%s", out.String())
	}
}
