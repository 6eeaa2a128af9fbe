package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/dimitrije/teampulse/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// DefaultPassword is the password every fixture account is created with.
const DefaultPassword = "correct-horse"

// CreateManager seeds a manager owning a fresh team and returns both.
func (s *Server) CreateManager(t *testing.T, teamName string) (*dto.User, *dto.Team) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	manager := &dto.User{
		ID:       uuid.New(),
		Email:    fmt.Sprintf("manager%d@example.com", s.counter),
		FullName: fmt.Sprintf("Manager %d", s.counter),
		Role:     dto.RoleManager,
	}
	team := &dto.Team{ID: uuid.New(), Name: teamName, Manager: *manager}
	teamID := team.ID
	manager.TeamID = &teamID

	s.users[manager.ID] = manager
	s.passwords[manager.Email] = DefaultPassword
	s.teams[team.ID] = team
	return manager, team
}

// CreateEmployee seeds an employee. A nil team leaves the employee
// unassigned, addable through the add-member endpoint.
func (s *Server) CreateEmployee(t *testing.T, team *dto.Team) *dto.User {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	employee := &dto.User{
		ID:       uuid.New(),
		Email:    fmt.Sprintf("employee%d@example.com", s.counter),
		FullName: fmt.Sprintf("Employee %d", s.counter),
		Role:     dto.RoleEmployee,
	}
	if team != nil {
		stored := s.teams[team.ID]
		teamID := stored.ID
		employee.TeamID = &teamID
		stored.Members = append(stored.Members, *employee)
	}

	s.users[employee.ID] = employee
	s.passwords[employee.Email] = DefaultPassword
	return employee
}

// SeedFeedback inserts a feedback entry from manager to employee.
func (s *Server) SeedFeedback(t *testing.T, manager, employee *dto.User, sentiment dto.Sentiment) *dto.Feedback {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	f := &dto.Feedback{
		ID:                  uuid.New(),
		Strengths:           fmt.Sprintf("Strength set %d: reliable delivery", s.counter),
		AreasForImprovement: fmt.Sprintf("Improvement set %d: written updates", s.counter),
		Feedback:            fmt.Sprintf("Generated summary %d", s.counter),
		Sentiment:           sentiment,
		CreatedAt:           time.Now().UTC(),
		Employee:            *employee,
		Manager:             manager,
		Tags:                []dto.Tag{},
		Comments:            []dto.Comment{},
	}
	s.feedback = append(s.feedback, f)
	return f
}

// SeedNotification inserts a notification for the user.
func (s *Server) SeedNotification(t *testing.T, user *dto.User, message string, read bool) *dto.Notification {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	n := &dto.Notification{
		ID:        uuid.New(),
		Message:   message,
		IsRead:    read,
		CreatedAt: time.Now().UTC(),
	}
	s.notifications[user.ID] = append(s.notifications[user.ID], n)
	return n
}

// Revoke removes the account server-side, so every token for it starts
// answering 401. Lets tests expire a session mid-flight.
func (s *Server) Revoke(t *testing.T, user *dto.User) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, user.ID)
}

// Token mints a valid bearer token for the user.
func (s *Server) Token(t *testing.T, user *dto.User) string {
	t.Helper()
	token, err := s.JWT.Sign(user.ID)
	require.NoError(t, err)
	return token
}

// ExpiredToken mints a token that the fake API will reject with 401.
func (s *Server) ExpiredToken(t *testing.T, user *dto.User) string {
	t.Helper()
	token, err := s.JWT.SignExpired(user.ID)
	require.NoError(t, err)
	return token
}

// NotificationsFor returns a copy of the user's server-side notifications.
func (s *Server) NotificationsFor(t *testing.T, user *dto.User) []dto.Notification {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]dto.Notification, 0, len(s.notifications[user.ID]))
	for _, n := range s.notifications[user.ID] {
		result = append(result, *n)
	}
	return result
}
