package api

import (
	"time"

	"github.com/careclinic/care-scheduling/internal/scheduling"
)

const dateLayout = "2006-01-02"

type RegisterRequest struct {
	FullName    string `json:"full_name"`
	Age         int    `json:"age"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type DeleteAccountRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type PatientResponse struct {
	ID          int64  `json:"id"`
	FullName    string `json:"full_name"`
	Age         int    `json:"age"`
	DateOfBirth string `json:"date_of_birth"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
}

type PublishSlotRequest struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Time     string `json:"time"`
	Capacity int    `json:"capacity"`
}

type SlotResponse struct {
	ID       int64  `json:"id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Capacity int    `json:"capacity"`
}

type BookRequest struct {
	PatientID int64  `json:"patient_id"`
	SlotID    int64  `json:"slot_id"`
	Type      string `json:"type"`
}

type CancelRequest struct {
	PatientID int64 `json:"patient_id"`
}

type AppointmentResponse struct {
	ID          int64  `json:"id"`
	PatientID   int64  `json:"patient_id"`
	SlotID      int64  `json:"slot_id"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Status      string `json:"status"`
	PatientName string `json:"patient_name,omitempty"`
}

type StatusCountResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func patientResponse(p *scheduling.Patient) PatientResponse {
	return PatientResponse{
		ID:          p.ID,
		FullName:    p.FullName,
		Age:         p.Age,
		DateOfBirth: p.DateOfBirth.Format(dateLayout),
		Address:     p.Address,
		Phone:       p.Phone,
	}
}

func slotResponse(s scheduling.ScheduleSlot) SlotResponse {
	return SlotResponse{
		ID:       s.ID,
		Date:     s.Date.Format(dateLayout),
		Time:     s.TimeOfDay,
		Capacity: s.Capacity,
	}
}

func appointmentResponse(a scheduling.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		PatientID: a.PatientID,
		SlotID:    a.SlotID,
		Type:      a.Type,
		Date:      a.Date.Format(dateLayout),
		Time:      a.TimeOfDay,
		Status:    string(a.Status),
	}
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
