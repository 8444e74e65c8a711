package room_api_client

const (
	// Base URL
	DefaultBaseURL = "http://localhost:3000"

	// API Endpoints
	RoomTTLEndpoint  = "/api/room/ttl"
	RoomEndpoint     = "/api/room"
	MessagesEndpoint = "/api/messages"

	// Query parameters
	RoomIDParam = "roomId"

	// Headers
	AuthTokenHeader = "x-auth-token"
)
