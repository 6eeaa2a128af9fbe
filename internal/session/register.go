package session

import (
	"errors"
	"strings"

	"github.com/dimitrije/teampulse/pkg/dto"
	"github.com/google/uuid"
)

// Registration is a tagged union over the two role-specific payload shapes:
// managers found a new team by name, employees join an existing team by id.
// Validation happens before any network call.
type Registration interface {
	Validate() error
	request() dto.RegisterRequest
}

type ManagerRegistration struct {
	Email    string
	FullName string
	Password string
	TeamName string
}

func (r ManagerRegistration) Validate() error {
	if err := validateCommon(r.Email, r.FullName, r.Password); err != nil {
		return err
	}
	if strings.TrimSpace(r.TeamName) == "" {
		return errors.New("a manager registration requires a team name")
	}
	return nil
}

func (r ManagerRegistration) request() dto.RegisterRequest {
	return dto.RegisterRequest{
		Email:    r.Email,
		FullName: r.FullName,
		Password: r.Password,
		Role:     dto.RoleManager,
		TeamName: r.TeamName,
	}
}

type EmployeeRegistration struct {
	Email    string
	FullName string
	Password string
	TeamID   uuid.UUID
}

func (r EmployeeRegistration) Validate() error {
	if err := validateCommon(r.Email, r.FullName, r.Password); err != nil {
		return err
	}
	if r.TeamID == uuid.Nil {
		return errors.New("an employee registration requires a team id")
	}
	return nil
}

func (r EmployeeRegistration) request() dto.RegisterRequest {
	teamID := r.TeamID
	return dto.RegisterRequest{
		Email:    r.Email,
		FullName: r.FullName,
		Password: r.Password,
		Role:     dto.RoleEmployee,
		TeamID:   &teamID,
	}
}

func validateCommon(email, fullName, password string) error {
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return errors.New("a valid email is required")
	}
	if strings.TrimSpace(fullName) == "" {
		return errors.New("full name is required")
	}
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
