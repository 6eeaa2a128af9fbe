package testutil

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dimitrije/teampulse/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

// PDFStub is the payload the fake export endpoint serves.
const PDFStub = "%PDF-1.4 teampulse test report"

// Server is an in-process fake of the feedback API. It issues real HS256
// bearer tokens, speaks the same contracts the production API does
// (form-encoded login, {detail} error bodies, 401 on bad tokens) and keeps
// per-request counters so tests can assert that no call was made.
type Server struct {
	HTTP *httptest.Server
	JWT  *JWTSigner

	mu            sync.Mutex
	users         map[uuid.UUID]*dto.User
	passwords     map[string]string
	teams         map[uuid.UUID]*dto.Team
	feedback      []*dto.Feedback
	notifications map[uuid.UUID][]*dto.Notification
	requests      map[string]int
	counter       int
}

func NewServer(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		JWT:           NewJWTSigner("test-secret-key", 15*time.Minute),
		users:         make(map[uuid.UUID]*dto.User),
		passwords:     make(map[string]string),
		teams:         make(map[uuid.UUID]*dto.Team),
		notifications: make(map[uuid.UUID][]*dto.Notification),
		requests:      make(map[string]int),
	}

	app := drift.New()
	app.SetMode(drift.ReleaseMode)
	app.Use(middleware.Recovery())
	app.Use(s.countRequests)

	app.Post("/auth/login", s.login)
	app.Post("/auth/register", s.register)

	app.Get("/users/me", s.me)
	app.Get("/users/employees", s.listEmployees)

	app.Get("/teams/", s.listTeams)
	app.Get("/teams/me", s.myTeam)
	app.Get("/teams/me/stats", s.teamStats)
	app.Post("/teams/me/members/:id", s.addMember)

	app.Get("/feedback/", s.listFeedback)
	app.Post("/feedback/", s.createFeedback)
	app.Put("/feedback/:id", s.updateFeedback)
	app.Patch("/feedback/:id/acknowledge", s.acknowledgeFeedback)
	app.Post("/feedback/:id/comments", s.addComment)
	app.Get("/feedback/export/pdf", s.exportPDF)
	app.Post("/feedback/request", s.requestFeedback)

	app.Get("/notifications", s.listNotifications)
	app.Patch("/notifications/:id/read", s.markNotificationRead)

	app.Post("/ai/rephrase", s.aiRephrase)
	app.Post("/ai/suggest-feedback", s.aiSuggest)
	app.Post("/ai/generate-feedback", s.aiGenerate)

	s.HTTP = httptest.NewServer(app)
	t.Cleanup(s.HTTP.Close)
	return s
}

func (s *Server) URL() string {
	return s.HTTP.URL
}

func (s *Server) countRequests(c *drift.Context) {
	s.mu.Lock()
	s.requests[c.Request.Method+" "+c.Request.URL.Path]++
	s.mu.Unlock()
	c.Next()
}

// RequestCount returns how many times the exact method+path was hit.
func (s *Server) RequestCount(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[method+" "+path]
}

// TotalRequests returns the number of requests received so far.
func (s *Server) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.requests {
		total += n
	}
	return total
}

// authUser resolves the bearer token to a user, answering 401 with a
// {detail} body itself when the token is missing, invalid or expired.
func (s *Server) authUser(c *drift.Context) *dto.User {
	header := c.GetHeader("Authorization")
	if len(header) < 8 || header[:7] != "Bearer " {
		c.JSON(401, map[string]string{"detail": "Not authenticated"})
		return nil
	}

	userID, err := s.JWT.Validate(header[7:])
	if err != nil {
		c.JSON(401, map[string]string{"detail": "Could not validate credentials"})
		return nil
	}

	s.mu.Lock()
	user, ok := s.users[userID]
	s.mu.Unlock()
	if !ok {
		c.JSON(401, map[string]string{"detail": "Could not validate credentials"})
		return nil
	}
	return user
}

func (s *Server) login(c *drift.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.JSON(400, map[string]string{"detail": "invalid form body"})
		return
	}
	email := c.Request.PostForm.Get("username")
	password := c.Request.PostForm.Get("password")

	s.mu.Lock()
	stored, ok := s.passwords[email]
	var user *dto.User
	for _, u := range s.users {
		if u.Email == email {
			user = u
			break
		}
	}
	s.mu.Unlock()

	if !ok || stored != password || user == nil {
		c.JSON(401, map[string]string{"detail": "Incorrect email or password"})
		return
	}

	token, err := s.JWT.Sign(user.ID)
	if err != nil {
		c.JSON(500, map[string]string{"detail": "could not issue token"})
		return
	}
	c.JSON(200, dto.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) register(c *drift.Context) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.JSON(400, map[string]string{"detail": "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.passwords[req.Email]; exists {
		c.JSON(400, map[string]string{"detail": "A user with this email already exists in the system."})
		return
	}

	user := &dto.User{
		ID:       uuid.New(),
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
	}

	switch req.Role {
	case dto.RoleManager:
		if req.TeamName == "" {
			c.JSON(400, map[string]string{"detail": "team_name is required for managers"})
			return
		}
		team := &dto.Team{ID: uuid.New(), Name: req.TeamName, Manager: *user}
		teamID := team.ID
		user.TeamID = &teamID
		s.teams[team.ID] = team
	case dto.RoleEmployee:
		if req.TeamID == nil {
			c.JSON(400, map[string]string{"detail": "team_id is required for employees"})
			return
		}
		team, ok := s.teams[*req.TeamID]
		if !ok {
			c.JSON(404, map[string]string{"detail": "Team not found"})
			return
		}
		teamID := team.ID
		user.TeamID = &teamID
		team.Members = append(team.Members, *user)
	default:
		c.JSON(400, map[string]string{"detail": "invalid role"})
		return
	}

	s.users[user.ID] = user
	s.passwords[req.Email] = req.Password
	c.JSON(201, user)
}

func (s *Server) me(c *drift.Context) {
	user := s.authUser(c)
	if user == nil {
		return
	}
	c.JSON(200, user)
}

func (s *Server) listEmployees(c *drift.Context) {
	if s.authUser(c) == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	employees := []dto.User{}
	for _, u := range s.users {
		if u.Role == dto.RoleEmployee && u.TeamID == nil {
			employees = append(employees, *u)
		}
	}
	c.JSON(200, employees)
}

func (s *Server) listTeams(c *drift.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	teams := []dto.TeamPublic{}
	for _, team := range s.teams {
		teams = append(teams, dto.TeamPublic{ID: team.ID, Name: team.Name})
	}
	c.JSON(200, teams)
}

func (s *Server) myTeam(c *drift.Context) {
	user := s.authUser(c)
	if user == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	team := s.managedTeam(user)
	if team == nil {
		c.JSON(404, map[string]string{"detail": "You are not managing a team."})
		return
	}
	c.JSON(200, team)
}

func (s *Server) teamStats(c *drift.Context) {
	user := s.authUser(c)
	if user == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[dto.Sentiment]int{}
	for _, f := range s.feedback {
		if f.Manager != nil && f.Manager.ID == user.ID {
			counts[f.Sentiment]++
		}
	}
	stats := []dto.SentimentStat{}
	for _, sentiment := range []dto.Sentiment{dto.SentimentPositive, dto.SentimentNeutral, dto.SentimentNegative} {
		if counts[sentiment] > 0 {
			stats = append(stats, dto.SentimentStat{Sentiment: sentiment, Count: counts[sentiment]})
		}
	}
	c.JSON(200, stats)
}

func (s *Server) addMember(c *drift.Context) {
	user := s.authUser(c)
	if user == nil {
		return
	}

	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(400, map[string]string{"detail": "invalid employee id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	team := s.managedTeam(user)
	if team == nil {
		c.JSON(403, map[string]string{"detail": "Only managers can add team members."})
		return
	}
	employee, ok := s.users[employeeID]
	if !ok || employee.Role != dto.RoleEmployee {
		c.JSON(404, map[string]string{"detail": "Employee not found."})
		return
	}
	teamID := team.ID
	employee.TeamID = &teamID
	team.Members = append(team.Members, *employee)
	c.JSON(200, team)
}

func (s *Server) listFeedback(c *drift.Context) {
	user := s.authUser(c)
	if user == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	result := []dto.Feedback{}
	for _, f := range s.feedback {
		if user.Role == dto.RoleManager && f.Manager != nil && f.Manager.ID == user.ID {
			result = append(result, *f)
		}
		if user.Role == dto.RoleEmployee && f.Employee.ID == user.ID {
			result = append(result, *f)
		}
	}
	c.JSON(200, result)
}

func (s *Server) createFeedback(c *drift.Context) {
	user := s.authUser(c)
	if user == nil {
		return
	}
	if user.Role != dto.RoleManager {
		c.JSON(403, map[string]string{"detail": "Only managers can give feedback."})
		return
	}

	var req dto.CreateFeedbackRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.JSON(400, map[string]string{"detail": "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	employee, ok := s.users[req.EmployeeID]
	if !ok {
		c.JSON(404, map[string]string{"detail": "Employee not found."})
		return
	}

	f := &dto.Feedback{
		ID:                  uuid.New(),
		Strengths:           req.Strengths,
		AreasForImprovement: req.AreasForImprovement,
		Feedback:            "Generated summary: " + req.Strengths,
		Sentiment:           req.Sentiment,
		CreatedAt:           time.Now().UTC(),
		Employee:            *employee,
		Manager:             user,
		Tags:                []dto.Tag{},
		Comments:            []dto.Comment{},
	}
	s.feedback = append(s.feedback, f)
	s.notify(employee.ID, fmt.Sprintf("You have received new feedback from %s.", user.FullName))
	c.JSON(201, f)
}

func (s *Server) updateFeedback(c *drift.Context) {
	user := s.authUser(c)
	if user == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(400, map[string]string{"detail": "invalid feedback id"})
		return
	}

	var req dto.UpdateFeedbackRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.JSON(400, map[string]string{"detail": "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.findFeedback(id)
	if f == nil {
		c.JSON(404, map[string]string{"detail": "Feedback not found"})
		return
	}
	if f.Manager == nil || f.Manager.ID != user.ID {
		c.JSON(403, map[string]string{"detail": "Not authorized to update this feedback"})
		return
	}

	f.Strengths = req.Strengths
	f.AreasForImprovement = req.AreasForImprovement
	f.Sentiment = req.Sentiment
	c.JSON(200, f)
}

func (s *Server) acknowledgeFeedback(c *drift.Context) {
	user := s.authUser(c)
	if user == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(400, map[string]string{"detail": "invalid feedback id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.findFeedback(id)
	if f == nil {
		c.JSON(404, map[string]string{"detail": "Feedback not found"})
		return
	}
	if f.Employee.ID != user.ID {
		c.JSON(403, map[string]string{"detail": "Not authorized to acknowledge this feedback"})
		return
	}

	f.Acknowledged = true
	c.JSON(200, f)
}

func (s *Server) addComment(c *drift.Context) {
	user := s.authUser(c)
	if user == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(400, map[string]string{"detail": "invalid feedback id"})
		return
	}

	var req dto.CreateCommentRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.JSON(400, map[string]string{"detail": "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.findFeedback(id)
	if f == nil {
		c.JSON(404, map[string]string{"detail": "Feedback not found"})
		return
	}

	comment := dto.Comment{
		ID:        uuid.New(),
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
		User:      *user,
	}
	f.Comments = append(f.Comments, comment)
	c.JSON(201, comment)
}

func (s *Server) exportPDF(c *drift.Context) {
	if s.authUser(c) == nil {
		return
	}
	_ = c.HTML(200, PDFStub)
}

func (s *Server) requestFeedback(c *drift.Context) {
	user := s.authUser(c)
	if user == nil {
		return
	}

	s.mu.Lock()
	for _, team := range s.teams {
		if user.TeamID != nil && team.ID == *user.TeamID {
			s.notify(team.Manager.ID, fmt.Sprintf("%s has requested feedback.", user.FullName))
		}
	}
	s.mu.Unlock()
	_ = c.HTML(204, "")
}

func (s *Server) listNotifications(c *drift.Context) {
	user := s.authUser(c)
	if user == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	result := []dto.Notification{}
	for _, n := range s.notifications[user.ID] {
		result = append(result, *n)
	}
	c.JSON(200, result)
}

func (s *Server) markNotificationRead(c *drift.Context) {
	user := s.authUser(c)
	if user == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(400, map[string]string{"detail": "invalid notification id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications[user.ID] {
		if n.ID == id {
			n.IsRead = true
			c.JSON(200, n)
			return
		}
	}
	c.JSON(404, map[string]string{"detail": "Notification not found"})
}

func (s *Server) aiRephrase(c *drift.Context) {
	if s.authUser(c) == nil {
		return
	}
	var req dto.RephraseRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.JSON(400, map[string]string{"detail": "invalid request body"})
		return
	}
	c.JSON(200, "Rephrased: "+req.Text)
}

func (s *Server) aiSuggest(c *drift.Context) {
	if s.authUser(c) == nil {
		return
	}
	var req dto.SuggestFeedbackRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.JSON(400, map[string]string{"detail": "invalid request body"})
		return
	}
	c.JSON(200, "Suggestion for: "+req.Prompt)
}

func (s *Server) aiGenerate(c *drift.Context) {
	if s.authUser(c) == nil {
		return
	}
	var req dto.GenerateFeedbackRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.JSON(400, map[string]string{"detail": "invalid request body"})
		return
	}
	c.JSON(200, "Generated from: "+req.Strengths)
}

// managedTeam returns the team the user manages. Caller holds the lock.
func (s *Server) managedTeam(user *dto.User) *dto.Team {
	for _, team := range s.teams {
		if team.Manager.ID == user.ID {
			return team
		}
	}
	return nil
}

// findFeedback returns the feedback with the given id. Caller holds the lock.
func (s *Server) findFeedback(id uuid.UUID) *dto.Feedback {
	for _, f := range s.feedback {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// notify appends a notification for the recipient. Caller holds the lock.
func (s *Server) notify(recipient uuid.UUID, message string) {
	s.notifications[recipient] = append(s.notifications[recipient], &dto.Notification{
		ID:        uuid.New(),
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})
}
