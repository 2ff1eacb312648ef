package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mnunley1/Renegade-Race-sub001/internal/config"
	"github.com/Mnunley1/Renegade-Race-sub001/internal/handlers"
	"github.com/Mnunley1/Renegade-Race-sub001/internal/middleware"
	"github.com/Mnunley1/Renegade-Race-sub001/internal/repository"
	"github.com/Mnunley1/Renegade-Race-sub001/internal/services"
	chatws "github.com/Mnunley1/Renegade-Race-sub001/internal/websocket"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	userRepo := repository.NewUserRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	driverProfileRepo := repository.NewDriverProfileRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	blockRepo := repository.NewBlockRepository(db)

	messagingService := services.NewMessagingService(
		db,
		conversationRepo,
		messageRepo,
		userRepo,
		vehicleRepo,
		teamRepo,
		driverProfileRepo,
		reservationRepo,
		blockRepo,
	)
	hostInboxService := services.NewHostInboxService(db, conversationRepo, messageRepo)

	conversationHandler := handlers.NewConversationHandler(messagingService)
	messageHandler := handlers.NewMessageHandler(messagingService)
	hostHandler := handlers.NewHostHandler(hostInboxService)
	blockHandler := handlers.NewBlockHandler(blockRepo)

	chatHub := chatws.NewHub()
	go chatHub.Run()
	wsHandler := handlers.NewWebSocketHandler(messagingService, chatHub, cfg.JWTSecret)

	api := app.Group("/api")
	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	conversations := authProtected.Group("/conversations")
	conversations.Get("", conversationHandler.ListConversations)
	conversations.Post("", conversationHandler.CreateConversation)
	conversations.Post("/motorsports", conversationHandler.CreateMotorsportsConversation)
	conversations.Get("/find", conversationHandler.FindConversation)
	conversations.Get("/:id", conversationHandler.GetConversation)
	conversations.Delete("/:id", conversationHandler.DeleteConversation)
	conversations.Post("/:id/read", conversationHandler.MarkRead)
	conversations.Post("/:id/archive", conversationHandler.Archive)
	conversations.Post("/:id/reservation", conversationHandler.LinkReservation)
	conversations.Get("/:id/messages", messageHandler.GetMessages)
	conversations.Post("/:id/messages", messageHandler.SendMessage)

	messages := authProtected.Group("/messages")
	messages.Put("/:id", messageHandler.EditMessage)
	messages.Delete("/:id", messageHandler.DeleteMessage)

	host := authProtected.Group("/host")
	host.Post("/conversations/bulk", hostHandler.BulkConversationActions)
	host.Get("/conversations/by-vehicle", hostHandler.ConversationsByVehicle)
	host.Get("/conversations/analytics", hostHandler.ConversationAnalytics)

	blocks := authProtected.Group("/blocks")
	blocks.Post("", blockHandler.BlockUser)
	blocks.Delete("/:id", blockHandler.UnblockUser)

	api.Use("/v1/ws", wsHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(wsHandler.HandleWebSocket))
}
