package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/Mnunley1/Renegade-Race-sub001/internal/models"
	"github.com/Mnunley1/Renegade-Race-sub001/internal/services"
)

type stubConversationService struct {
	listResult      []models.ConversationSummary
	listErr         error
	getResult       *models.ConversationSummary
	getErr          error
	findResult      *models.Conversation
	findErr         error
	createResult    *models.Conversation
	createErr       error
	motorsportsErr  error
	markReadErr     error
	archiveErr      error
	deleteErr       error
	linkErr         error
	lastActorID     int64
	lastRole        string
	lastVehicleID   int64
	lastRenterID    int64
	lastOwnerID     int64
	lastConvID      int64
	lastReservation int64
	lastMotorsports services.MotorsportsConversationInput
}

func (s *stubConversationService) ListConversations(_ context.Context, actorID int64, role string) ([]models.ConversationSummary, error) {
	s.lastActorID = actorID
	s.lastRole = role
	return s.listResult, s.listErr
}

func (s *stubConversationService) GetConversation(_ context.Context, actorID int64, conversationID int64) (*models.ConversationSummary, error) {
	s.lastActorID = actorID
	s.lastConvID = conversationID
	return s.getResult, s.getErr
}

func (s *stubConversationService) FindRentalConversation(_ context.Context, actorID, vehicleID, renterID, ownerID int64) (*models.Conversation, error) {
	s.lastActorID = actorID
	s.lastVehicleID = vehicleID
	s.lastRenterID = renterID
	s.lastOwnerID = ownerID
	return s.findResult, s.findErr
}

func (s *stubConversationService) CreateRentalConversation(_ context.Context, actorID, vehicleID, renterID, ownerID int64) (*models.Conversation, error) {
	s.lastActorID = actorID
	s.lastVehicleID = vehicleID
	s.lastRenterID = renterID
	s.lastOwnerID = ownerID
	return s.createResult, s.createErr
}

func (s *stubConversationService) CreateMotorsportsConversation(_ context.Context, actorID int64, input services.MotorsportsConversationInput) (*models.Conversation, error) {
	s.lastActorID = actorID
	s.lastMotorsports = input
	return s.createResult, s.motorsportsErr
}

func (s *stubConversationService) MarkConversationRead(_ context.Context, actorID int64, conversationID int64) error {
	s.lastActorID = actorID
	s.lastConvID = conversationID
	return s.markReadErr
}

func (s *stubConversationService) ArchiveConversation(_ context.Context, actorID int64, conversationID int64) error {
	s.lastActorID = actorID
	s.lastConvID = conversationID
	return s.archiveErr
}

func (s *stubConversationService) DeleteConversation(_ context.Context, actorID int64, conversationID int64) error {
	s.lastActorID = actorID
	s.lastConvID = conversationID
	return s.deleteErr
}

func (s *stubConversationService) LinkReservation(_ context.Context, actorID int64, conversationID int64, reservationID int64) error {
	s.lastActorID = actorID
	s.lastConvID = conversationID
	s.lastReservation = reservationID
	return s.linkErr
}

func newConversationTestApp(service *stubConversationService, userID string) *fiber.App {
	handler := NewConversationHandler(service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", "renter")
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Get("/api/v1/conversations", handler.ListConversations)
	app.Post("/api/v1/conversations", handler.CreateConversation)
	app.Post("/api/v1/conversations/motorsports", handler.CreateMotorsportsConversation)
	app.Get("/api/v1/conversations/:id", handler.GetConversation)
	app.Delete("/api/v1/conversations/:id", handler.DeleteConversation)
	app.Post("/api/v1/conversations/:id/reservation", handler.LinkReservation)
	return app
}

func TestListConversationsReturnsSummaries(t *testing.T) {
	lastText := "Is the GT3 free next weekend?"
	service := &stubConversationService{
		listResult: []models.ConversationSummary{
			{
				Conversation: models.Conversation{
					ID:               31,
					ConversationType: models.ConversationTypeRental,
					RenterID:         42,
					OwnerID:          8,
					IsActive:         true,
					LastMessageText:  &lastText,
					UnreadCountOwner: 2,
				},
				Counterpart: &models.UserSummary{ID: 8, DisplayName: "Pit Lane Garage"},
				Vehicle:     &models.VehicleSummary{ID: 5, Title: "911 GT3 Cup", Make: "Porsche", Model: "911", Year: 2021},
			},
		},
	}
	app := newConversationTestApp(service, "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations?role=renter", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastActorID != 42 || service.lastRole != "renter" {
		t.Fatalf("unexpected actor context: %d %q", service.lastActorID, service.lastRole)
	}

	var body struct {
		Conversations []models.ConversationSummary `json:"conversations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Conversations) != 1 || body.Conversations[0].UnreadCountOwner != 2 {
		t.Fatalf("unexpected response: %+v", body.Conversations)
	}
	if body.Conversations[0].Vehicle == nil || body.Conversations[0].Vehicle.Make != "Porsche" {
		t.Fatalf("expected vehicle snapshot, got %+v", body.Conversations[0].Vehicle)
	}
}

func TestListConversationsRejectsForeignUserID(t *testing.T) {
	service := &stubConversationService{}
	app := newConversationTestApp(service, "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations?role=renter&user_id=7", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if service.lastActorID != 0 {
		t.Fatalf("service should not have been called, got actor %d", service.lastActorID)
	}
}

func TestCreateConversationReturnsCreated(t *testing.T) {
	service := &stubConversationService{
		createResult: &models.Conversation{ID: 9, ConversationType: models.ConversationTypeRental, RenterID: 42, OwnerID: 7},
	}
	app := newConversationTestApp(service, "42")

	req := httptest.NewRequest(
		http.MethodPost,
		"/api/v1/conversations",
		strings.NewReader(`{"vehicle_id":5,"renter_id":42,"owner_id":7}`),
	)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastVehicleID != 5 || service.lastRenterID != 42 || service.lastOwnerID != 7 {
		t.Fatalf("unexpected triad: %d %d %d", service.lastVehicleID, service.lastRenterID, service.lastOwnerID)
	}
}

func TestCreateConversationRejectsMissingFields(t *testing.T) {
	service := &stubConversationService{}
	app := newConversationTestApp(service, "42")

	req := httptest.NewRequest(
		http.MethodPost,
		"/api/v1/conversations",
		strings.NewReader(`{"vehicle_id":5}`),
	)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateMotorsportsConversationPassesSubject(t *testing.T) {
	service := &stubConversationService{
		createResult: &models.Conversation{ID: 12, ConversationType: models.ConversationTypeTeam, RenterID: 3, OwnerID: 42},
	}
	app := newConversationTestApp(service, "42")

	req := httptest.NewRequest(
		http.MethodPost,
		"/api/v1/conversations/motorsports",
		strings.NewReader(`{"participant_id":3,"conversation_type":"team","team_id":14}`),
	)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastMotorsports.ParticipantID != 3 ||
		service.lastMotorsports.ConversationType != models.ConversationTypeTeam ||
		service.lastMotorsports.TeamID == nil || *service.lastMotorsports.TeamID != 14 {
		t.Fatalf("unexpected input: %+v", service.lastMotorsports)
	}
}

func TestGetConversationMapsNotFound(t *testing.T) {
	service := &stubConversationService{getErr: pgx.ErrNoRows}
	app := newConversationTestApp(service, "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/77", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if service.lastConvID != 77 {
		t.Fatalf("expected conversation id 77, got %d", service.lastConvID)
	}
}

func TestDeleteConversationMapsForbidden(t *testing.T) {
	service := &stubConversationService{deleteErr: services.ErrForbidden}
	app := newConversationTestApp(service, "42")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/conversations/5", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestLinkReservationPassesIDs(t *testing.T) {
	service := &stubConversationService{}
	app := newConversationTestApp(service, "42")

	req := httptest.NewRequest(
		http.MethodPost,
		"/api/v1/conversations/5/reservation",
		strings.NewReader(`{"reservation_id":88}`),
	)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastConvID != 5 || service.lastReservation != 88 {
		t.Fatalf("unexpected ids: conversation %d reservation %d", service.lastConvID, service.lastReservation)
	}
}

func TestUnauthenticatedRequestIsRejected(t *testing.T) {
	handler := NewConversationHandler(&stubConversationService{})

	app := fiber.New()
	app.Get("/api/v1/conversations", handler.ListConversations)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestGetConversationReturnsSummary(t *testing.T) {
	now := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	service := &stubConversationService{
		getResult: &models.ConversationSummary{
			Conversation: models.Conversation{
				ID:               31,
				ConversationType: models.ConversationTypeDriver,
				RenterID:         3,
				OwnerID:          42,
				IsActive:         true,
				LastMessageAt:    &now,
			},
			Counterpart: &models.UserSummary{ID: 3, DisplayName: "Alex Reyes"},
			Driver:      &models.DriverSummary{ID: 6, DisplayName: "Alex Reyes", Discipline: "endurance"},
		},
	}
	app := newConversationTestApp(service, "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/31", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Conversation models.ConversationSummary `json:"conversation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Conversation.Driver == nil || body.Conversation.Driver.Discipline != "endurance" {
		t.Fatalf("expected driver snapshot, got %+v", body.Conversation.Driver)
	}
}
