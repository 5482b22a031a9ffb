package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/huskymarket/HuskyMarketBack/internal/config"
	"github.com/huskymarket/HuskyMarketBack/internal/handlers"
	"github.com/huskymarket/HuskyMarketBack/internal/middleware"
	"github.com/huskymarket/HuskyMarketBack/internal/repository"
	"github.com/huskymarket/HuskyMarketBack/internal/services"
	chatws "github.com/huskymarket/HuskyMarketBack/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) error {
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	itemImageRepo := repository.NewItemImageRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	offerRepo := repository.NewOfferRepository(db)

	var storageService services.StorageService
	if cfg.SupabaseURL != "" && cfg.SupabaseBucket != "" && cfg.SupabaseServiceKey != "" {
		storageService = services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	}

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret, cfg.CampusEmailDomain)
	profileHandler := handlers.NewProfileHandler(userRepo, storageService)

	itemService := services.NewItemService(itemRepo, itemImageRepo, userRepo, storageService)
	relatedItemsService := services.NewRelatedItemsService(itemRepo)
	itemHandler := handlers.NewItemHandler(itemService, relatedItemsService)

	offerService := services.NewOfferService(db, offerRepo, itemRepo)
	offerHandler := handlers.NewOfferHandler(offerService)

	chatHub := chatws.NewHub()
	go chatHub.Run()
	chatService := services.NewChatService(db, conversationRepo, messageRepo, itemRepo)
	chatHandler := handlers.NewChatHandler(chatService, chatHub, cfg.JWTSecret)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	users := authProtected.Group("/users")
	users.Get("/profile", profileHandler.GetProfile)
	users.Put("/profile", profileHandler.UpdateProfile)
	users.Post("/profile/avatar", profileHandler.UploadAvatar)
	users.Get("/listings", itemHandler.MyListings)

	items := authProtected.Group("/items")
	items.Get("", itemHandler.ListItems)
	items.Post("", itemHandler.CreateItem)
	items.Get("/:id", itemHandler.GetItem)
	items.Put("/:id", itemHandler.UpdateItem)
	items.Delete("/:id", itemHandler.DeleteItem)
	items.Put("/:id/status", itemHandler.UpdateStatus)
	items.Get("/:id/related", itemHandler.RelatedItems)
	items.Post("/:id/images", itemHandler.AddImage)
	items.Delete("/:id/images/:imageID", itemHandler.RemoveImage)
	items.Post("/:id/offers", offerHandler.PlaceOffer)
	items.Get("/:id/offers", offerHandler.ListForItem)

	offers := authProtected.Group("/offers")
	offers.Get("", offerHandler.ListMine)
	offers.Put("/:id/status", offerHandler.UpdateStatus)

	conversations := authProtected.Group("/conversations")
	conversations.Get("", chatHandler.ListConversations)
	conversations.Post("", chatHandler.OpenConversation)
	conversations.Get("/:id/messages", chatHandler.GetMessages)
	conversations.Post("/:id/messages", chatHandler.SendMessage)

	api.Use("/v1/ws", chatHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(chatHandler.HandleWebSocket))

	return registerDocsRoutes(app, cfg)
}
