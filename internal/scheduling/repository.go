package scheduling

import (
	"context"
	"time"
)

// Repository contains all store interactions needed by the service.
type Repository interface {
	// Patients
	CreatePatient(ctx context.Context, p Patient) (*Patient, error)
	GetPatientByID(ctx context.Context, id int64) (*Patient, error)
	GetPatientByPhone(ctx context.Context, phone string) (*Patient, error)
	// DeletePatient removes the patient and every appointment they own in
	// one transaction.
	DeletePatient(ctx context.Context, id int64) error

	// Schedule slots
	CreateSlot(ctx context.Context, date time.Time, timeOfDay string, capacity int) (*ScheduleSlot, error)
	GetSlotByID(ctx context.Context, id int64) (*ScheduleSlot, error)
	ListAvailableSlots(ctx context.Context) ([]ScheduleSlot, error)
	ListAllSlots(ctx context.Context) ([]ScheduleSlot, error)
	DeleteSlot(ctx context.Context, id int64) error
	// SweepExhaustedSlots deletes every slot whose capacity has reached zero.
	SweepExhaustedSlots(ctx context.Context) error

	// BookSlot is the atomic booking unit: verify remaining capacity, insert
	// a pending appointment capturing the slot's date/time, decrement the
	// capacity, and sweep exhausted slots, all-or-nothing.
	BookSlot(ctx context.Context, patientID, slotID int64, appointmentType string) (*Appointment, error)

	// Appointments
	GetAppointmentByID(ctx context.Context, id int64) (*Appointment, error)
	ListAppointmentsByPatient(ctx context.Context, patientID int64) ([]Appointment, error)
	ListAllAppointments(ctx context.Context) ([]AppointmentDetail, error)
	CountAppointmentsForPatient(ctx context.Context, patientID int64) (int, error)
	CountAppointmentsByStatus(ctx context.Context) ([]StatusCount, error)
	DeleteAppointment(ctx context.Context, id int64) error
	MarkAppointmentCompleted(ctx context.Context, id int64) (*Appointment, error)
}
