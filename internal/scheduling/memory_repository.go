package scheduling

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository used by tests and by any
// deployment that wants to run without Postgres. Insertion order is
// preserved the way serial ids preserve it in the Postgres implementation.
type MemoryRepository struct {
	mu sync.Mutex

	nextPatientID     int64
	nextSlotID        int64
	nextAppointmentID int64

	patients     []Patient
	slots        []ScheduleSlot
	appointments []Appointment
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextPatientID:     1,
		nextSlotID:        1,
		nextAppointmentID: 1,
	}
}

// Patients

func (r *MemoryRepository) CreatePatient(_ context.Context, p Patient) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.patients {
		if existing.Phone == p.Phone {
			return nil, ErrPhoneTaken
		}
	}

	p.ID = r.nextPatientID
	r.nextPatientID++
	p.CreatedAt = time.Now()
	r.patients = append(r.patients, p)

	created := p
	return &created, nil
}

func (r *MemoryRepository) GetPatientByID(_ context.Context, id int64) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.patients {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, ErrPatientNotFound
}

func (r *MemoryRepository) GetPatientByPhone(_ context.Context, phone string) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.patients {
		if p.Phone == phone {
			found := p
			return &found, nil
		}
	}
	return nil, ErrPatientNotFound
}

func (r *MemoryRepository) DeletePatient(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, p := range r.patients {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrPatientNotFound
	}

	r.patients = append(r.patients[:idx], r.patients[idx+1:]...)

	kept := r.appointments[:0]
	for _, a := range r.appointments {
		if a.PatientID != id {
			kept = append(kept, a)
		}
	}
	r.appointments = kept

	return nil
}

// Schedule slots

func (r *MemoryRepository) CreateSlot(_ context.Context, date time.Time, timeOfDay string, capacity int) (*ScheduleSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := ScheduleSlot{
		ID:        r.nextSlotID,
		Date:      date,
		TimeOfDay: timeOfDay,
		Capacity:  capacity,
		CreatedAt: time.Now(),
	}
	r.nextSlotID++
	r.slots = append(r.slots, s)

	created := s
	return &created, nil
}

func (r *MemoryRepository) GetSlotByID(_ context.Context, id int64) (*ScheduleSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.findSlot(id)
	if s == nil {
		return nil, ErrSlotNotFound
	}
	found := *s
	return &found, nil
}

func (r *MemoryRepository) findSlot(id int64) *ScheduleSlot {
	for i := range r.slots {
		if r.slots[i].ID == id {
			return &r.slots[i]
		}
	}
	return nil
}

func (r *MemoryRepository) ListAvailableSlots(_ context.Context) ([]ScheduleSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []ScheduleSlot
	for _, s := range r.slots {
		if s.Capacity > 0 {
			result = append(result, s)
		}
	}
	return result, nil
}

func (r *MemoryRepository) ListAllSlots(_ context.Context) ([]ScheduleSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]ScheduleSlot, len(r.slots))
	copy(result, r.slots)
	return result, nil
}

func (r *MemoryRepository) DeleteSlot(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.slots {
		if s.ID == id {
			r.slots = append(r.slots[:i], r.slots[i+1:]...)
			return nil
		}
	}
	return ErrSlotNotFound
}

func (r *MemoryRepository) SweepExhaustedSlots(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked()
	return nil
}

func (r *MemoryRepository) sweepLocked() {
	kept := r.slots[:0]
	for _, s := range r.slots {
		if s.Capacity > 0 {
			kept = append(kept, s)
		}
	}
	r.slots = kept
}

func (r *MemoryRepository) BookSlot(_ context.Context, patientID, slotID int64, appointmentType string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot := r.findSlot(slotID)
	if slot == nil || slot.Capacity <= 0 {
		return nil, ErrSlotUnavailable
	}

	a := Appointment{
		ID:        r.nextAppointmentID,
		PatientID: patientID,
		SlotID:    slotID,
		Type:      appointmentType,
		Date:      slot.Date,
		TimeOfDay: slot.TimeOfDay,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	r.nextAppointmentID++
	r.appointments = append(r.appointments, a)

	slot.Capacity--
	r.sweepLocked()

	created := a
	return &created, nil
}

// Appointments

func (r *MemoryRepository) GetAppointmentByID(_ context.Context, id int64) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.appointments {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (r *MemoryRepository) ListAppointmentsByPatient(_ context.Context, patientID int64) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []Appointment
	for _, a := range r.appointments {
		if a.PatientID == patientID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *MemoryRepository) ListAllAppointments(_ context.Context) ([]AppointmentDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []AppointmentDetail
	for _, a := range r.appointments {
		d := AppointmentDetail{Appointment: a}
		for _, p := range r.patients {
			if p.ID == a.PatientID {
				d.PatientName = p.FullName
				break
			}
		}
		result = append(result, d)
	}
	return result, nil
}

func (r *MemoryRepository) CountAppointmentsForPatient(_ context.Context, patientID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, a := range r.appointments {
		if a.PatientID == patientID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) CountAppointmentsByStatus(_ context.Context) ([]StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := map[AppointmentStatus]int{}
	for _, a := range r.appointments {
		counts[a.Status]++
	}

	var result []StatusCount
	for _, status := range []AppointmentStatus{StatusCompleted, StatusPending} {
		if n, ok := counts[status]; ok {
			result = append(result, StatusCount{Status: status, Count: n})
		}
	}
	return result, nil
}

func (r *MemoryRepository) DeleteAppointment(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, a := range r.appointments {
		if a.ID == id {
			r.appointments = append(r.appointments[:i], r.appointments[i+1:]...)
			return nil
		}
	}
	return ErrAppointmentNotFound
}

func (r *MemoryRepository) MarkAppointmentCompleted(_ context.Context, id int64) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.appointments {
		if r.appointments[i].ID == id {
			r.appointments[i].Status = StatusCompleted
			found := r.appointments[i]
			return &found, nil
		}
	}
	return nil, ErrAppointmentNotFound
}
