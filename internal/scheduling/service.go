package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	redisclient "github.com/careclinic/care-scheduling/internal/redis"
)

type Service struct {
	repo   Repository
	locker redisclient.Locker
}

func NewService(repo Repository, locker redisclient.Locker) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
	}
}

// Accounts

type RegisterInput struct {
	FullName    string
	Age         int
	DateOfBirth time.Time
	Address     string
	Phone       string
	Password    string
}

// Register creates a patient account. The phone number is the login handle
// and must be unused; the password is stored as a bcrypt hash.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Patient, error) {
	if strings.TrimSpace(in.FullName) == "" {
		return nil, validationErr("full name", "must not be empty")
	}
	if in.Age <= 0 {
		return nil, validationErr("age", "must be a positive integer")
	}
	if in.DateOfBirth.IsZero() {
		return nil, validationErr("date of birth", "must be a valid date")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return nil, validationErr("phone number", "must not be empty")
	}
	if in.Password == "" {
		return nil, validationErr("password", "must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.repo.CreatePatient(ctx, Patient{
		FullName:     in.FullName,
		Age:          in.Age,
		DateOfBirth:  in.DateOfBirth,
		Address:      in.Address,
		Phone:        in.Phone,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, ErrPhoneTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create patient: %w", err)
	}

	return created, nil
}

// Login resolves a patient by phone number and password. An unknown phone and
// a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, phone, password string) (*Patient, error) {
	p, err := s.repo.GetPatientByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, ErrCredentialMismatch
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return nil, ErrCredentialMismatch
	}

	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	return s.repo.GetPatientByID(ctx, id)
}

// DeleteAccount removes the patient and every appointment they own, gated on
// re-entry of the account password. Any mismatch aborts with no mutation.
func (s *Service) DeleteAccount(ctx context.Context, patientID int64, password, confirm string) error {
	if password != confirm {
		return ErrCredentialMismatch
	}

	p, err := s.repo.GetPatientByID(ctx, patientID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return ErrCredentialMismatch
	}

	if err := s.repo.DeletePatient(ctx, patientID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	return nil
}

// Schedule management (admin)

// PublishSlot creates a schedule slot with the given capacity. A slot
// published with zero capacity is swept immediately.
func (s *Service) PublishSlot(ctx context.Context, date time.Time, timeOfDay string, capacity int) (*ScheduleSlot, error) {
	if date.IsZero() {
		return nil, validationErr("date", "must be a valid date")
	}
	if strings.TrimSpace(timeOfDay) == "" {
		return nil, validationErr("time", "must not be empty")
	}
	if capacity < 0 {
		return nil, validationErr("capacity", "must be a non-negative integer")
	}

	slot, err := s.repo.CreateSlot(ctx, date, timeOfDay, capacity)
	if err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}

	if err := s.repo.SweepExhaustedSlots(ctx); err != nil {
		return nil, err
	}

	return slot, nil
}

// DeleteSlot removes a slot regardless of remaining capacity. Appointments
// referencing it keep their captured date/time and are not touched.
func (s *Service) DeleteSlot(ctx context.Context, slotID int64) error {
	if err := s.repo.DeleteSlot(ctx, slotID); err != nil {
		return err
	}
	return s.repo.SweepExhaustedSlots(ctx)
}

func (s *Service) ListAvailableSlots(ctx context.Context) ([]ScheduleSlot, error) {
	return s.repo.ListAvailableSlots(ctx)
}

func (s *Service) ListAllSlots(ctx context.Context) ([]ScheduleSlot, error) {
	return s.repo.ListAllSlots(ctx)
}

// Booking

// Book reserves one unit of the slot's capacity for the patient. The
// per-slot lock and the transactional BookSlot together guarantee that
// concurrent bookings cannot exceed the slot's published capacity.
func (s *Service) Book(ctx context.Context, patientID, slotID int64, appointmentType string) (*Appointment, error) {
	if strings.TrimSpace(appointmentType) == "" {
		return nil, validationErr("appointment type", "must not be empty")
	}

	if _, err := s.repo.GetPatientByID(ctx, patientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	// Guard against staleness between slot display and selection.
	slot, err := s.repo.GetSlotByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("load slot: %w", err)
	}
	if slot.Capacity <= 0 {
		return nil, ErrSlotUnavailable
	}

	var created *Appointment

	err = s.locker.WithSlotLock(ctx, slotID, func(lockCtx context.Context) error {
		appt, err := s.repo.BookSlot(lockCtx, patientID, slotID, appointmentType)
		if err != nil {
			return err
		}
		created = appt
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBusy
		}
		if errors.Is(err, ErrSlotUnavailable) {
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("book slot: %w", err)
	}

	return created, nil
}

// Cancellation and completion

// Cancel deletes one appointment belonging to the calling patient. Slot
// capacity is not restored; cancelling permanently consumes the booking's
// unit of supply.
func (s *Service) Cancel(ctx context.Context, patientID, appointmentID int64) error {
	appt, err := s.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if appt.PatientID != patientID {
		return ErrAppointmentNotFound
	}

	return s.repo.DeleteAppointment(ctx, appointmentID)
}

// Complete transitions an appointment to completed. The transition is
// one-way and re-applying it to a completed appointment is a no-op.
func (s *Service) Complete(ctx context.Context, appointmentID int64) (*Appointment, error) {
	return s.repo.MarkAppointmentCompleted(ctx, appointmentID)
}

// Reporting

func (s *Service) PatientAppointments(ctx context.Context, patientID int64) ([]Appointment, error) {
	return s.repo.ListAppointmentsByPatient(ctx, patientID)
}

func (s *Service) PatientAppointmentCount(ctx context.Context, patientID int64) (int, error) {
	return s.repo.CountAppointmentsForPatient(ctx, patientID)
}

func (s *Service) AllAppointments(ctx context.Context) ([]AppointmentDetail, error) {
	return s.repo.ListAllAppointments(ctx)
}

func (s *Service) AppointmentCountsByStatus(ctx context.Context) ([]StatusCount, error) {
	return s.repo.CountAppointmentsByStatus(ctx)
}
