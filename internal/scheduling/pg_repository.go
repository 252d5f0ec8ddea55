package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.FullName,
		&p.Age,
		&p.DateOfBirth,
		&p.Address,
		&p.Phone,
		&p.PasswordHash,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	return &p, nil
}

func scanSlot(row pgx.Row) (*ScheduleSlot, error) {
	var s ScheduleSlot

	err := row.Scan(
		&s.ID,
		&s.Date,
		&s.TimeOfDay,
		&s.Capacity,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	return &s, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.SlotID,
		&a.Type,
		&a.Date,
		&a.TimeOfDay,
		&a.Status,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

// Patients

func (r *PgRepository) CreatePatient(ctx context.Context, p Patient) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO patients (full_name, age, date_of_birth, address, phone_number, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING id, full_name, age, date_of_birth, address, phone_number, password_hash, created_at
	`, p.FullName, p.Age, p.DateOfBirth, p.Address, p.Phone, p.PasswordHash)

	created, err := scanPatient(row)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: unique_violation on phone_number
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrPhoneTaken
		}
		return nil, err
	}

	return created, nil
}

func (r *PgRepository) GetPatientByID(ctx context.Context, id int64) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, full_name, age, date_of_birth, address, phone_number, password_hash, created_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetPatientByPhone(ctx context.Context, phone string) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, full_name, age, date_of_birth, address, phone_number, password_hash, created_at
		FROM patients
		WHERE phone_number = $1
	`, phone)
	return scanPatient(row)
}

func (r *PgRepository) DeletePatient(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete patient: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM appointments WHERE patient_id = $1`, id); err != nil {
		return fmt.Errorf("delete patient appointments: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}

	return tx.Commit(ctx)
}

// Schedule slots

func (r *PgRepository) CreateSlot(ctx context.Context, date time.Time, timeOfDay string, capacity int) (*ScheduleSlot, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO schedule_slots (slot_date, slot_time, capacity, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, slot_date, slot_time, capacity, created_at
	`, date, timeOfDay, capacity)
	return scanSlot(row)
}

func (r *PgRepository) GetSlotByID(ctx context.Context, id int64) (*ScheduleSlot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, slot_date, slot_time, capacity, created_at
		FROM schedule_slots
		WHERE id = $1
	`, id)
	return scanSlot(row)
}

func (r *PgRepository) listSlots(ctx context.Context, query string) ([]ScheduleSlot, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ScheduleSlot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListAvailableSlots(ctx context.Context) ([]ScheduleSlot, error) {
	return r.listSlots(ctx, `
		SELECT id, slot_date, slot_time, capacity, created_at
		FROM schedule_slots
		WHERE capacity > 0
		ORDER BY id
	`)
}

func (r *PgRepository) ListAllSlots(ctx context.Context) ([]ScheduleSlot, error) {
	return r.listSlots(ctx, `
		SELECT id, slot_date, slot_time, capacity, created_at
		FROM schedule_slots
		ORDER BY id
	`)
}

func (r *PgRepository) DeleteSlot(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schedule_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *PgRepository) SweepExhaustedSlots(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM schedule_slots WHERE capacity <= 0`)
	if err != nil {
		return fmt.Errorf("sweep exhausted slots: %w", err)
	}
	return nil
}

// BookSlot locks the slot row so two concurrent bookings cannot both observe
// the same remaining capacity. The insert, decrement, and sweep commit as one
// unit or not at all.
func (r *PgRepository) BookSlot(ctx context.Context, patientID, slotID int64, appointmentType string) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin booking: %w", err)
	}
	defer tx.Rollback(ctx)

	slot, err := scanSlot(tx.QueryRow(ctx, `
		SELECT id, slot_date, slot_time, capacity, created_at
		FROM schedule_slots
		WHERE id = $1
		FOR UPDATE
	`, slotID))
	if err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			// Already swept or deleted; to the booker that is the same as full.
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("lock slot: %w", err)
	}
	if slot.Capacity <= 0 {
		return nil, ErrSlotUnavailable
	}

	appt, err := scanAppointment(tx.QueryRow(ctx, `
		INSERT INTO appointments (patient_id, slot_id, appointment_type, appointment_date, appointment_time, status, created_at)
		VALUES ($1, $2, $3, $4, $5, 'pending', now())
		RETURNING id, patient_id, slot_id, appointment_type, appointment_date, appointment_time, status, created_at
	`, patientID, slotID, appointmentType, slot.Date, slot.TimeOfDay))
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE schedule_slots SET capacity = capacity - 1 WHERE id = $1
	`, slotID); err != nil {
		return nil, fmt.Errorf("decrement capacity: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM schedule_slots WHERE capacity <= 0`); err != nil {
		return nil, fmt.Errorf("sweep exhausted slots: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit booking: %w", err)
	}

	return appt, nil
}

// Appointments

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id int64) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, patient_id, slot_id, appointment_type, appointment_date, appointment_time, status, created_at
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

// ListAppointmentsByPatient reads the captured date/time from the appointment
// row itself, so appointments stay visible after their slot is deleted.
func (r *PgRepository) ListAppointmentsByPatient(ctx context.Context, patientID int64) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, slot_id, appointment_type, appointment_date, appointment_time, status, created_at
		FROM appointments
		WHERE patient_id = $1
		ORDER BY id
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListAllAppointments(ctx context.Context) ([]AppointmentDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.patient_id, a.slot_id, a.appointment_type, a.appointment_date, a.appointment_time, a.status, a.created_at, p.full_name
		FROM appointments a
		JOIN patients p ON a.patient_id = p.id
		ORDER BY a.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AppointmentDetail
	for rows.Next() {
		var d AppointmentDetail
		err := rows.Scan(
			&d.ID,
			&d.PatientID,
			&d.SlotID,
			&d.Type,
			&d.Date,
			&d.TimeOfDay,
			&d.Status,
			&d.CreatedAt,
			&d.PatientName,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) CountAppointmentsForPatient(ctx context.Context, patientID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments WHERE patient_id = $1
	`, patientID).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PgRepository) CountAppointmentsByStatus(ctx context.Context) ([]StatusCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM appointments
		GROUP BY status
		ORDER BY status
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		result = append(result, sc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// MarkAppointmentCompleted is gated only on the row existing: re-applying it
// to an already-completed appointment leaves it completed.
func (r *PgRepository) MarkAppointmentCompleted(ctx context.Context, id int64) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'completed'
		WHERE id = $1
		RETURNING id, patient_id, slot_id, appointment_type, appointment_date, appointment_time, status, created_at
	`, id)
	return scanAppointment(row)
}
