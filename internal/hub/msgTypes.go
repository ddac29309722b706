package hub

const (
	ServerRegistered = "ServerRegistered"
	ServerRemoved    = "ServerRemoved"

	UserRegistered = "UserRegistered"
	UserRemoved    = "UserRemoved"

	MessageLogged  = "MessageLogged"
	MessageDeleted = "MessageDeleted"
	MessageReset   = "MessageReset"
)
