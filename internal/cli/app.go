package cli

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/careclinic/care-scheduling/internal/scheduling"
)

// App is the terminal presentation layer. It owns no scheduling rules: every
// mutation and query goes through the service, and every error surfaced by
// the service returns control to the enclosing menu.
type App struct {
	svc         *scheduling.Service
	p           *Prompter
	adminSecret string
}

func NewApp(svc *scheduling.Service, p *Prompter, adminSecret string) *App {
	return &App{
		svc:         svc,
		p:           p,
		adminSecret: adminSecret,
	}
}

// Run drives the main menu until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	a.p.Println("=============================================================")
	a.p.Println("  CARe: Coordinated Access for Reliable Healthcare Scheduling")
	a.p.Println("=============================================================")

	for {
		a.p.Println()
		a.p.Println("[1] Patient portal")
		a.p.Println("[2] Healthcare staff")
		a.p.Println("[3] Exit")

		choice, err := a.p.Line("Enter your choice: ")
		if err != nil {
			return err
		}

		cmd, parseErr := ParseMainCommand(choice)
		if parseErr != nil {
			a.p.Println("Invalid choice, please try again.")
			continue
		}

		switch cmd {
		case MainPatientPortal:
			if err := a.patientPortal(ctx); err != nil {
				return err
			}
		case MainAdminPortal:
			if err := a.adminPortal(ctx); err != nil {
				return err
			}
		case MainExit:
			a.p.Println("Thank you for using CARe. Stay healthy!")
			return nil
		}
	}
}

func (a *App) patientPortal(ctx context.Context) error {
	for {
		a.p.Println()
		a.p.Println("--- PATIENT PORTAL ---")
		a.p.Println("[1] Log in")
		a.p.Println("[2] Sign up")
		a.p.Println("[3] Return to main menu")

		choice, err := a.p.Line("Enter your choice: ")
		if err != nil {
			return err
		}

		cmd, parseErr := ParsePortalCommand(choice)
		if parseErr != nil {
			a.p.Println("Invalid choice, please try again.")
			continue
		}

		switch cmd {
		case PortalLogin:
			patient, err := a.login(ctx)
			if err != nil {
				return err
			}
			if patient != nil {
				if err := a.patientMenu(ctx, patient); err != nil {
					return err
				}
				return nil
			}
		case PortalSignUp:
			if err := a.signUp(ctx); err != nil {
				return err
			}
		case PortalBack:
			return nil
		}
	}
}

func (a *App) login(ctx context.Context) (*scheduling.Patient, error) {
	phone, err := a.p.Line("Phone number: ")
	if err != nil {
		return nil, err
	}
	password, err := a.p.Secret("Password: ")
	if err != nil {
		return nil, err
	}

	patient, svcErr := a.svc.Login(ctx, phone, password)
	if svcErr != nil {
		a.reportError(svcErr)
		return nil, nil
	}

	a.p.Printf("Welcome, %s!\n", patient.FullName)
	return patient, nil
}

func (a *App) signUp(ctx context.Context) error {
	fullName, err := a.p.Line("Full name: ")
	if err != nil {
		return err
	}
	age, err := a.p.Int("Age: ")
	if err != nil {
		return err
	}
	dob, err := a.p.Date("Date of birth (YYYY-MM-DD): ")
	if err != nil {
		return err
	}
	address, err := a.p.Line("Address: ")
	if err != nil {
		return err
	}
	phone, err := a.p.Line("Phone number: ")
	if err != nil {
		return err
	}

	var password string
	for {
		password, err = a.p.Secret("Password: ")
		if err != nil {
			return err
		}
		confirm, err := a.p.Secret("Confirm password: ")
		if err != nil {
			return err
		}
		if password == confirm {
			break
		}
		a.p.Println("Passwords do not match, please try again.")
	}

	_, svcErr := a.svc.Register(ctx, scheduling.RegisterInput{
		FullName:    fullName,
		Age:         age,
		DateOfBirth: dob,
		Address:     address,
		Phone:       phone,
		Password:    password,
	})
	if svcErr != nil {
		a.reportError(svcErr)
		return nil
	}

	a.p.Println("Account created successfully, you can now log in.")
	return nil
}

func (a *App) patientMenu(ctx context.Context, patient *scheduling.Patient) error {
	for {
		a.p.Println()
		a.p.Printf("--- WELCOME, %s ---\n", patient.FullName)
		a.p.Println("[1] Schedule appointment")
		a.p.Println("[2] View appointments")
		a.p.Println("[3] Delete account")
		a.p.Println("[4] Log out")

		choice, err := a.p.Line("Enter your choice: ")
		if err != nil {
			return err
		}

		cmd, parseErr := ParsePatientCommand(choice)
		if parseErr != nil {
			a.p.Println("Invalid choice, please try again.")
			continue
		}

		switch cmd {
		case PatientBook:
			if err := a.bookAppointment(ctx, patient.ID); err != nil {
				return err
			}
		case PatientViewAppointments:
			if err := a.viewAppointments(ctx, patient.ID); err != nil {
				return err
			}
		case PatientDeleteAccount:
			deleted, err := a.deleteAccount(ctx, patient)
			if err != nil {
				return err
			}
			if deleted {
				return nil
			}
		case PatientLogout:
			a.p.Println("Logging out...")
			return nil
		}
	}
}

func (a *App) bookAppointment(ctx context.Context, patientID int64) error {
	slots, err := a.svc.ListAvailableSlots(ctx)
	if err != nil {
		a.reportError(err)
		return nil
	}
	if len(slots) == 0 {
		a.p.Println("No available schedules.")
		return nil
	}

	a.p.Println()
	a.p.Println("--- AVAILABLE SCHEDULES ---")
	for i, s := range slots {
		a.p.Printf("[%d] %s at %s (remaining slots: %d)\n", i+1, s.Date.Format(dateLayout), s.TimeOfDay, s.Capacity)
	}

	var slot scheduling.ScheduleSlot
	for {
		n, err := a.p.Int("Choose a schedule: ")
		if err != nil {
			return err
		}
		if n >= 1 && n <= len(slots) {
			slot = slots[n-1]
			break
		}
		a.p.Println("Invalid choice, please try again.")
	}

	apptType, err := a.p.Line("Appointment type (e.g. vaccination, checkup, urgent care): ")
	if err != nil {
		return err
	}

	if _, svcErr := a.svc.Book(ctx, patientID, slot.ID, apptType); svcErr != nil {
		a.reportError(svcErr)
		return nil
	}

	a.p.Println("Appointment scheduled successfully!")
	return nil
}

func (a *App) viewAppointments(ctx context.Context, patientID int64) error {
	appts, err := a.svc.PatientAppointments(ctx, patientID)
	if err != nil {
		a.reportError(err)
		return nil
	}
	if len(appts) == 0 {
		a.p.Println("No appointments found.")
		return nil
	}

	a.p.Println()
	a.p.Println("--- YOUR APPOINTMENTS ---")
	for i, appt := range appts {
		a.p.Printf("[%d] %s on %s at %s - %s\n", i+1, appt.Type, appt.Date.Format(dateLayout), appt.TimeOfDay, appt.Status)
	}

	total, err := a.svc.PatientAppointmentCount(ctx, patientID)
	if err != nil {
		a.reportError(err)
		return nil
	}
	a.p.Printf("Total appointments: %d\n", total)

	wantCancel, err := a.p.Confirm("Do you want to cancel an appointment? (yes/no): ")
	if err != nil {
		return err
	}
	if !wantCancel {
		return nil
	}

	n, err := a.p.Int("Enter the appointment number to cancel: ")
	if err != nil {
		return err
	}
	if n < 1 || n > len(appts) {
		a.p.Println("Invalid appointment number.")
		return nil
	}

	if svcErr := a.svc.Cancel(ctx, patientID, appts[n-1].ID); svcErr != nil {
		a.reportError(svcErr)
		return nil
	}

	a.p.Println("Appointment cancelled.")
	return nil
}

func (a *App) deleteAccount(ctx context.Context, patient *scheduling.Patient) (bool, error) {
	a.p.Println()
	a.p.Println("--- YOUR DETAILS ---")
	a.p.Printf("Patient ID   : %d\n", patient.ID)
	a.p.Printf("Full name    : %s\n", patient.FullName)
	a.p.Printf("Age          : %d\n", patient.Age)
	a.p.Printf("Date of birth: %s\n", patient.DateOfBirth.Format(dateLayout))
	a.p.Printf("Address      : %s\n", patient.Address)
	a.p.Printf("Phone number : %s\n", patient.Phone)

	appts, err := a.svc.PatientAppointments(ctx, patient.ID)
	if err != nil {
		a.reportError(err)
		return false, nil
	}
	if len(appts) > 0 {
		a.p.Println("--- YOUR APPOINTMENTS ---")
		for _, appt := range appts {
			a.p.Printf("#%d %s on %s at %s\n", appt.ID, appt.Type, appt.Date.Format(dateLayout), appt.TimeOfDay)
		}
	}

	sure, err := a.p.Confirm("Are you sure you want to delete your account? (yes/no): ")
	if err != nil {
		return false, err
	}
	if !sure {
		a.p.Println("Account deletion cancelled.")
		return false, nil
	}

	password, err := a.p.Secret("Enter your password: ")
	if err != nil {
		return false, err
	}
	confirm, err := a.p.Secret("Confirm your password: ")
	if err != nil {
		return false, err
	}

	if svcErr := a.svc.DeleteAccount(ctx, patient.ID, password, confirm); svcErr != nil {
		a.reportError(svcErr)
		return false, nil
	}

	a.p.Println("Account deleted.")
	return true, nil
}

func (a *App) adminPortal(ctx context.Context) error {
	secret, err := a.p.Secret("Enter admin password: ")
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(a.adminSecret)) != 1 {
		a.p.Println("Invalid admin password.")
		return nil
	}

	for {
		a.p.Println()
		a.p.Println("--- ADMIN MENU ---")
		a.p.Println("[1] View all patient appointments")
		a.p.Println("[2] Update available schedules")
		a.p.Println("[3] Log out")

		choice, err := a.p.Line("Enter your choice: ")
		if err != nil {
			return err
		}

		cmd, parseErr := ParseAdminCommand(choice)
		if parseErr != nil {
			a.p.Println("Invalid choice, please try again.")
			continue
		}

		switch cmd {
		case AdminViewAppointments:
			if err := a.viewAllAppointments(ctx); err != nil {
				return err
			}
		case AdminManageSchedule:
			if err := a.manageSchedule(ctx); err != nil {
				return err
			}
		case AdminLogout:
			a.p.Println("Logging out...")
			return nil
		}
	}
}

func (a *App) viewAllAppointments(ctx context.Context) error {
	appts, err := a.svc.AllAppointments(ctx)
	if err != nil {
		a.reportError(err)
		return nil
	}
	if len(appts) == 0 {
		a.p.Println("No appointments found.")
		return nil
	}

	a.p.Println()
	a.p.Println("--- ALL PATIENT APPOINTMENTS ---")
	for _, appt := range appts {
		a.p.Printf("#%-4d %-20s %-15s %s at %s [%s]\n",
			appt.ID, appt.PatientName, appt.Type, appt.Date.Format(dateLayout), appt.TimeOfDay, appt.Status)
	}

	counts, err := a.svc.AppointmentCountsByStatus(ctx)
	if err != nil {
		a.reportError(err)
		return nil
	}
	a.p.Println("--- APPOINTMENT SUMMARY ---")
	for _, c := range counts {
		a.p.Printf("Total %s: %d\n", c.Status, c.Count)
	}

	wantComplete, err := a.p.Confirm("Do you want to mark an appointment as completed? (yes/no): ")
	if err != nil {
		return err
	}
	if !wantComplete {
		return nil
	}

	id, err := a.p.Int("Enter the appointment ID: ")
	if err != nil {
		return err
	}

	if _, svcErr := a.svc.Complete(ctx, int64(id)); svcErr != nil {
		a.reportError(svcErr)
		return nil
	}

	a.p.Println("Appointment marked as completed.")
	return nil
}

func (a *App) manageSchedule(ctx context.Context) error {
	slots, err := a.svc.ListAllSlots(ctx)
	if err != nil {
		a.reportError(err)
		return nil
	}

	a.p.Println()
	if len(slots) == 0 {
		a.p.Println("No schedules available.")
	} else {
		a.p.Println("--- EXISTING SCHEDULES ---")
		for i, s := range slots {
			a.p.Printf("[%d] %s at %s (remaining slots: %d)\n", i+1, s.Date.Format(dateLayout), s.TimeOfDay, s.Capacity)
		}
	}

	a.p.Println("[1] Add a new schedule")
	a.p.Println("[2] Delete a schedule")
	a.p.Println("[3] Return to admin menu")

	choice, err := a.p.Line("Enter your choice: ")
	if err != nil {
		return err
	}

	cmd, parseErr := ParseScheduleCommand(choice)
	if parseErr != nil {
		a.p.Println("Invalid choice, please try again.")
		return nil
	}

	switch cmd {
	case ScheduleAdd:
		date, err := a.p.Date("Date (YYYY-MM-DD): ")
		if err != nil {
			return err
		}
		timeOfDay, err := a.p.Line("Time (e.g. 09:00 AM): ")
		if err != nil {
			return err
		}
		capacity, err := a.p.Int("Maximum number of appointments: ")
		if err != nil {
			return err
		}

		if _, svcErr := a.svc.PublishSlot(ctx, date, timeOfDay, capacity); svcErr != nil {
			a.reportError(svcErr)
			return nil
		}
		a.p.Println("New schedule added.")

	case ScheduleDelete:
		if len(slots) == 0 {
			a.p.Println("No schedules to delete.")
			return nil
		}
		n, err := a.p.Int("Enter the schedule number to delete: ")
		if err != nil {
			return err
		}
		if n < 1 || n > len(slots) {
			a.p.Println("Invalid schedule number.")
			return nil
		}

		if svcErr := a.svc.DeleteSlot(ctx, slots[n-1].ID); svcErr != nil {
			a.reportError(svcErr)
			return nil
		}
		a.p.Println("Schedule deleted.")

	case ScheduleBack:
	}

	return nil
}

// reportError translates service errors into a line of text and hands
// control back to the enclosing menu. Nothing here is fatal.
func (a *App) reportError(err error) {
	var ve *scheduling.ValidationError

	switch {
	case errors.As(err, &ve):
		a.p.Printf("Error: %s\n", ve.Error())
	case errors.Is(err, scheduling.ErrCredentialMismatch):
		a.p.Println("Error: invalid credentials.")
	case errors.Is(err, scheduling.ErrPhoneTaken):
		a.p.Println("Error: that phone number is already registered.")
	case errors.Is(err, scheduling.ErrSlotUnavailable):
		a.p.Println("Error: that schedule is no longer available, please choose another.")
	case errors.Is(err, scheduling.ErrSlotBusy):
		a.p.Println("Error: that schedule is being booked right now, please retry.")
	case errors.Is(err, scheduling.ErrPatientNotFound),
		errors.Is(err, scheduling.ErrSlotNotFound),
		errors.Is(err, scheduling.ErrAppointmentNotFound):
		a.p.Printf("Error: %s.\n", err.Error())
	default:
		a.p.Printf("Error: %v\n", fmt.Errorf("unexpected failure: %w", err))
	}
}
