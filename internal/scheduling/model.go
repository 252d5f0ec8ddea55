package scheduling

import "time"

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusCompleted AppointmentStatus = "completed"
)

type Patient struct {
	ID           int64
	FullName     string
	Age          int
	DateOfBirth  time.Time
	Address      string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
}

// ScheduleSlot is an admin-published opportunity to be booked. Capacity is
// the number of bookings it can still accept; a slot at zero is never
// offered and is removed by the sweep.
type ScheduleSlot struct {
	ID        int64
	Date      time.Time
	TimeOfDay string
	Capacity  int
	CreatedAt time.Time
}

// Appointment binds one patient to one schedule slot. Date and TimeOfDay are
// copied from the slot when the booking is made and never re-derived, so they
// stay valid after the slot itself is swept or deleted.
type Appointment struct {
	ID        int64
	PatientID int64
	SlotID    int64
	Type      string
	Date      time.Time
	TimeOfDay string
	Status    AppointmentStatus
	CreatedAt time.Time
}

// AppointmentDetail is the admin view: an appointment joined with the
// booking patient's name.
type AppointmentDetail struct {
	Appointment
	PatientName string
}

type StatusCount struct {
	Status AppointmentStatus
	Count  int
}
