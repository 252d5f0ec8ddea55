package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	redisclient "github.com/careclinic/care-scheduling/internal/redis"
)

func newTestService() (*Service, *MemoryRepository) {
	repo := NewMemoryRepository()
	return NewService(repo, redisclient.NoopLocker{}), repo
}

func registerPatient(t *testing.T, svc *Service, phone string) *Patient {
	t.Helper()

	p, err := svc.Register(context.Background(), RegisterInput{
		FullName:    "Ada Reyes",
		Age:         34,
		DateOfBirth: time.Date(1991, 3, 14, 0, 0, 0, 0, time.UTC),
		Address:     "12 Elm Street",
		Phone:       phone,
		Password:    "hunter2secret",
	})
	if err != nil {
		t.Fatalf("register patient: %v", err)
	}
	return p
}

func publishSlot(t *testing.T, svc *Service, capacity int) *ScheduleSlot {
	t.Helper()

	slot, err := svc.PublishSlot(context.Background(),
		time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), "09:00 AM", capacity)
	if err != nil {
		t.Fatalf("publish slot: %v", err)
	}
	return slot
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	valid := RegisterInput{
		FullName:    "Ada Reyes",
		Age:         34,
		DateOfBirth: time.Date(1991, 3, 14, 0, 0, 0, 0, time.UTC),
		Phone:       "555-0001",
		Password:    "hunter2secret",
	}

	cases := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"empty name", func(in *RegisterInput) { in.FullName = " " }},
		{"zero age", func(in *RegisterInput) { in.Age = 0 }},
		{"negative age", func(in *RegisterInput) { in.Age = -3 }},
		{"zero date of birth", func(in *RegisterInput) { in.DateOfBirth = time.Time{} }},
		{"empty phone", func(in *RegisterInput) { in.Phone = "" }},
		{"empty password", func(in *RegisterInput) { in.Password = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)

			_, err := svc.Register(ctx, in)

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicatePhone(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	registerPatient(t, svc, "555-0001")

	_, err := svc.Register(ctx, RegisterInput{
		FullName:    "Ben Okafor",
		Age:         41,
		DateOfBirth: time.Date(1984, 7, 2, 0, 0, 0, 0, time.UTC),
		Phone:       "555-0001",
		Password:    "anothersecret",
	})
	if !errors.Is(err, ErrPhoneTaken) {
		t.Fatalf("expected ErrPhoneTaken, got %v", err)
	}

	// The original account is unaffected and can still log in.
	if _, err := svc.Login(ctx, "555-0001", "hunter2secret"); err != nil {
		t.Fatalf("original patient login after duplicate attempt: %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p := registerPatient(t, svc, "555-0001")

	got, err := svc.Login(ctx, "555-0001", "hunter2secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != p.ID {
		t.Fatalf("login resolved patient %d, want %d", got.ID, p.ID)
	}

	if _, err := svc.Login(ctx, "555-0001", "wrongpassword"); !errors.Is(err, ErrCredentialMismatch) {
		t.Fatalf("wrong password: expected ErrCredentialMismatch, got %v", err)
	}
	if _, err := svc.Login(ctx, "555-9999", "hunter2secret"); !errors.Is(err, ErrCredentialMismatch) {
		t.Fatalf("unknown phone: expected ErrCredentialMismatch, got %v", err)
	}
}

func TestPasswordStoredHashed(t *testing.T) {
	svc, repo := newTestService()

	p := registerPatient(t, svc, "555-0001")

	stored, err := repo.GetPatientByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("load patient: %v", err)
	}
	if stored.PasswordHash == "hunter2secret" {
		t.Fatal("password stored in plaintext")
	}
}

func TestBookConsumesCapacityAndSweeps(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p := registerPatient(t, svc, "555-0001")
	slot := publishSlot(t, svc, 1)

	appt, err := svc.Book(ctx, p.ID, slot.ID, "vaccination")
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if !appt.Date.Equal(slot.Date) || appt.TimeOfDay != slot.TimeOfDay {
		t.Fatalf("appointment captured %v %s, want %v %s",
			appt.Date, appt.TimeOfDay, slot.Date, slot.TimeOfDay)
	}
	if appt.Status != StatusPending {
		t.Fatalf("new appointment status = %s, want %s", appt.Status, StatusPending)
	}

	available, err := svc.ListAvailableSlots(ctx)
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(available) != 0 {
		t.Fatalf("exhausted slot still offered: %v", available)
	}

	all, err := svc.ListAllSlots(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("exhausted slot not swept: %v", all)
	}
}

func TestBookExhaustedSlot(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a := registerPatient(t, svc, "555-0001")
	b := registerPatient2(t, svc, "555-0002")
	slot := publishSlot(t, svc, 1)

	if _, err := svc.Book(ctx, a.ID, slot.ID, "vaccination"); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err := svc.Book(ctx, b.ID, slot.ID, "checkup")
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}
}

func registerPatient2(t *testing.T, svc *Service, phone string) *Patient {
	t.Helper()

	p, err := svc.Register(context.Background(), RegisterInput{
		FullName:    "Ben Okafor",
		Age:         41,
		DateOfBirth: time.Date(1984, 7, 2, 0, 0, 0, 0, time.UTC),
		Address:     "9 Oak Lane",
		Phone:       phone,
		Password:    "anothersecret",
	})
	if err != nil {
		t.Fatalf("register patient: %v", err)
	}
	return p
}

func TestNoOverbooking(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p := registerPatient(t, svc, "555-0001")
	slot := publishSlot(t, svc, 3)

	succeeded := 0
	for i := 0; i < 10; i++ {
		_, err := svc.Book(ctx, p.ID, slot.ID, "checkup")
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrSlotUnavailable):
		default:
			t.Fatalf("attempt %d: unexpected error %v", i, err)
		}
	}

	if succeeded != 3 {
		t.Fatalf("%d bookings succeeded against capacity 3", succeeded)
	}
}

func TestNoOverbookingConcurrent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p := registerPatient(t, svc, "555-0001")
	slot := publishSlot(t, svc, 5)

	const attempts = 50
	results := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Book(ctx, p.ID, slot.ID, "checkup")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrSlotUnavailable):
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}

	if succeeded != 5 {
		t.Fatalf("%d concurrent bookings succeeded against capacity 5", succeeded)
	}
}

func TestPublishZeroCapacitySweptImmediately(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	publishSlot(t, svc, 0)

	all, err := svc.ListAllSlots(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("zero-capacity slot survived the sweep: %v", all)
	}
}

func TestPublishValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.PublishSlot(ctx, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), "09:00 AM", -1)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("negative capacity: expected ValidationError, got %v", err)
	}

	_, err = svc.PublishSlot(ctx, time.Time{}, "09:00 AM", 1)
	if !errors.As(err, &ve) {
		t.Fatalf("zero date: expected ValidationError, got %v", err)
	}
}

func TestCancelDoesNotRestoreCapacity(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p := registerPatient(t, svc, "555-0001")
	slot := publishSlot(t, svc, 2)

	appt, err := svc.Book(ctx, p.ID, slot.ID, "vaccination")
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if err := svc.Cancel(ctx, p.ID, appt.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	appts, err := svc.PatientAppointments(ctx, p.ID)
	if err != nil {
		t.Fatalf("list appointments: %v", err)
	}
	if len(appts) != 0 {
		t.Fatalf("cancelled appointment still in ledger: %v", appts)
	}

	// Capacity stays at whatever it was before the cancellation.
	got, err := svc.ListAvailableSlots(ctx)
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(got) != 1 || got[0].Capacity != 1 {
		t.Fatalf("slot capacity after cancel = %v, want one slot at capacity 1", got)
	}
}

func TestCancelOnlyOwnAppointments(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a := registerPatient(t, svc, "555-0001")
	b := registerPatient2(t, svc, "555-0002")
	slot := publishSlot(t, svc, 2)

	appt, err := svc.Book(ctx, a.ID, slot.ID, "vaccination")
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if err := svc.Cancel(ctx, b.ID, appt.ID); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}

	appts, err := svc.PatientAppointments(ctx, a.ID)
	if err != nil {
		t.Fatalf("list appointments: %v", err)
	}
	if len(appts) != 1 {
		t.Fatalf("appointment deleted by a non-owner")
	}
}

func TestCompleteIsOneWayAndIdempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p := registerPatient(t, svc, "555-0001")
	slot := publishSlot(t, svc, 2)

	appt, err := svc.Book(ctx, p.ID, slot.ID, "vaccination")
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	first, err := svc.Complete(ctx, appt.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if first.Status != StatusCompleted {
		t.Fatalf("status after complete = %s, want %s", first.Status, StatusCompleted)
	}

	// Re-applying is a no-op, not an error.
	second, err := svc.Complete(ctx, appt.ID)
	if err != nil {
		t.Fatalf("repeat complete: %v", err)
	}
	if second.Status != StatusCompleted {
		t.Fatalf("status after repeat complete = %s, want %s", second.Status, StatusCompleted)
	}
}

func TestCompleteUnknownAppointment(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p := registerPatient(t, svc, "555-0001")
	slot := publishSlot(t, svc, 2)
	if _, err := svc.Book(ctx, p.ID, slot.ID, "vaccination"); err != nil {
		t.Fatalf("book: %v", err)
	}

	if _, err := svc.Complete(ctx, 9999); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}

	// Ledger unchanged.
	appts, err := svc.PatientAppointments(ctx, p.ID)
	if err != nil {
		t.Fatalf("list appointments: %v", err)
	}
	if len(appts) != 1 || appts[0].Status != StatusPending {
		t.Fatalf("ledger mutated by failed complete: %v", appts)
	}
}

func TestDeleteAccountCascade(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a := registerPatient(t, svc, "555-0001")
	b := registerPatient2(t, svc, "555-0002")
	slot := publishSlot(t, svc, 5)

	if _, err := svc.Book(ctx, a.ID, slot.ID, "vaccination"); err != nil {
		t.Fatalf("book for a: %v", err)
	}
	if _, err := svc.Book(ctx, a.ID, slot.ID, "checkup"); err != nil {
		t.Fatalf("book for a: %v", err)
	}
	if _, err := svc.Book(ctx, b.ID, slot.ID, "checkup"); err != nil {
		t.Fatalf("book for b: %v", err)
	}

	if err := svc.DeleteAccount(ctx, a.ID, "hunter2secret", "hunter2secret"); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	if _, err := svc.GetPatient(ctx, a.ID); !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("patient still present after deletion: %v", err)
	}

	aAppts, err := svc.PatientAppointments(ctx, a.ID)
	if err != nil {
		t.Fatalf("list a's appointments: %v", err)
	}
	if len(aAppts) != 0 {
		t.Fatalf("cascade left %d appointments behind", len(aAppts))
	}

	bAppts, err := svc.PatientAppointments(ctx, b.ID)
	if err != nil {
		t.Fatalf("list b's appointments: %v", err)
	}
	if len(bAppts) != 1 {
		t.Fatalf("cascade deleted another patient's appointments: %v", bAppts)
	}
}

func TestDeleteAccountCredentialGate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p := registerPatient(t, svc, "555-0001")
	slot := publishSlot(t, svc, 2)
	if _, err := svc.Book(ctx, p.ID, slot.ID, "vaccination"); err != nil {
		t.Fatalf("book: %v", err)
	}

	cases := []struct {
		name              string
		password, confirm string
	}{
		{"confirmation mismatch", "hunter2secret", "hunter2secreT"},
		{"wrong password", "wrongpassword", "wrongpassword"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.DeleteAccount(ctx, p.ID, tc.password, tc.confirm)
			if !errors.Is(err, ErrCredentialMismatch) {
				t.Fatalf("expected ErrCredentialMismatch, got %v", err)
			}

			// No mutation performed.
			if _, err := svc.GetPatient(ctx, p.ID); err != nil {
				t.Fatalf("patient deleted despite credential mismatch: %v", err)
			}
			appts, err := svc.PatientAppointments(ctx, p.ID)
			if err != nil || len(appts) != 1 {
				t.Fatalf("appointments mutated despite credential mismatch: %v %v", appts, err)
			}
		})
	}
}

func TestSlotDeletionDoesNotCascade(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p := registerPatient(t, svc, "555-0001")
	slot := publishSlot(t, svc, 3)

	appt, err := svc.Book(ctx, p.ID, slot.ID, "vaccination")
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if err := svc.DeleteSlot(ctx, slot.ID); err != nil {
		t.Fatalf("delete slot: %v", err)
	}

	appts, err := svc.PatientAppointments(ctx, p.ID)
	if err != nil {
		t.Fatalf("list appointments: %v", err)
	}
	if len(appts) != 1 {
		t.Fatalf("slot deletion cascaded to appointments: %v", appts)
	}
	if !appts[0].Date.Equal(appt.Date) || appts[0].TimeOfDay != appt.TimeOfDay {
		t.Fatalf("captured date/time changed after slot deletion: %v", appts[0])
	}
}

func TestDeleteUnknownSlot(t *testing.T) {
	svc, _ := newTestService()

	if err := svc.DeleteSlot(context.Background(), 42); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestBookValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p := registerPatient(t, svc, "555-0001")
	slot := publishSlot(t, svc, 1)

	var ve *ValidationError
	if _, err := svc.Book(ctx, p.ID, slot.ID, "  "); !errors.As(err, &ve) {
		t.Fatalf("empty type: expected ValidationError, got %v", err)
	}

	if _, err := svc.Book(ctx, 9999, slot.ID, "checkup"); !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("unknown patient: expected ErrPatientNotFound, got %v", err)
	}

	if _, err := svc.Book(ctx, p.ID, 9999, "checkup"); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("unknown slot: expected ErrSlotUnavailable, got %v", err)
	}
}

func TestReportingViews(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a := registerPatient(t, svc, "555-0001")
	b := registerPatient2(t, svc, "555-0002")
	slot := publishSlot(t, svc, 5)

	first, err := svc.Book(ctx, a.ID, slot.ID, "vaccination")
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := svc.Book(ctx, b.ID, slot.ID, "checkup"); err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := svc.Complete(ctx, first.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	all, err := svc.AllAppointments(ctx)
	if err != nil {
		t.Fatalf("all appointments: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d appointments, want 2", len(all))
	}
	if all[0].PatientName != "Ada Reyes" || all[1].PatientName != "Ben Okafor" {
		t.Fatalf("joined patient names wrong: %q, %q", all[0].PatientName, all[1].PatientName)
	}

	counts, err := svc.AppointmentCountsByStatus(ctx)
	if err != nil {
		t.Fatalf("status counts: %v", err)
	}
	byStatus := map[AppointmentStatus]int{}
	for _, c := range counts {
		byStatus[c.Status] = c.Count
	}
	if byStatus[StatusCompleted] != 1 || byStatus[StatusPending] != 1 {
		t.Fatalf("status counts = %v, want 1 completed and 1 pending", byStatus)
	}

	n, err := svc.PatientAppointmentCount(ctx, a.ID)
	if err != nil {
		t.Fatalf("patient count: %v", err)
	}
	if n != 1 {
		t.Fatalf("patient appointment count = %d, want 1", n)
	}
}

func TestAvailableSlotsInsertionOrder(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	var want []int64
	for i := 0; i < 3; i++ {
		slot := publishSlot(t, svc, i+1)
		want = append(want, slot.ID)
	}

	got, err := svc.ListAvailableSlots(ctx)
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d slots, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i].ID != want[i] {
			t.Fatalf("slot order %v, want ids %v", got, want)
		}
	}
}
