package cli

import "errors"

// ErrUnknownChoice is returned when a menu selection does not map to a
// command; the caller re-prompts.
var ErrUnknownChoice = errors.New("unknown menu choice")

type MainCommand int

const (
	MainPatientPortal MainCommand = iota + 1
	MainAdminPortal
	MainExit
)

type PortalCommand int

const (
	PortalLogin PortalCommand = iota + 1
	PortalSignUp
	PortalBack
)

type PatientCommand int

const (
	PatientBook PatientCommand = iota + 1
	PatientViewAppointments
	PatientDeleteAccount
	PatientLogout
)

type AdminCommand int

const (
	AdminViewAppointments AdminCommand = iota + 1
	AdminManageSchedule
	AdminLogout
)

type ScheduleCommand int

const (
	ScheduleAdd ScheduleCommand = iota + 1
	ScheduleDelete
	ScheduleBack
)

func ParseMainCommand(s string) (MainCommand, error) {
	switch s {
	case "1":
		return MainPatientPortal, nil
	case "2":
		return MainAdminPortal, nil
	case "3":
		return MainExit, nil
	}
	return 0, ErrUnknownChoice
}

func ParsePortalCommand(s string) (PortalCommand, error) {
	switch s {
	case "1":
		return PortalLogin, nil
	case "2":
		return PortalSignUp, nil
	case "3":
		return PortalBack, nil
	}
	return 0, ErrUnknownChoice
}

func ParsePatientCommand(s string) (PatientCommand, error) {
	switch s {
	case "1":
		return PatientBook, nil
	case "2":
		return PatientViewAppointments, nil
	case "3":
		return PatientDeleteAccount, nil
	case "4":
		return PatientLogout, nil
	}
	return 0, ErrUnknownChoice
}

func ParseAdminCommand(s string) (AdminCommand, error) {
	switch s {
	case "1":
		return AdminViewAppointments, nil
	case "2":
		return AdminManageSchedule, nil
	case "3":
		return AdminLogout, nil
	}
	return 0, ErrUnknownChoice
}

func ParseScheduleCommand(s string) (ScheduleCommand, error) {
	switch s {
	case "1":
		return ScheduleAdd, nil
	case "2":
		return ScheduleDelete, nil
	case "3":
		return ScheduleBack, nil
	}
	return 0, ErrUnknownChoice
}
