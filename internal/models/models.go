package models

type Server struct {
	ID        int64  `json:"id,string"`
	DiscordID int64  `json:"discordID,string"`
	Name      string `json:"name"`
}

type User struct {
	ID        int64  `json:"id,string"`
	DiscordID int64  `json:"discordID,string"`
	Username  string `json:"username"`
}

type Message struct {
	ID       int64  `json:"id,string"`
	UserID   *int64 `json:"userID,omitempty"`
	ServerID *int64 `json:"serverID,omitempty"`
	Content  string `json:"content"`
}

type ConfigFile struct {
	Address           string
	Port              string
	BehindNginx       bool
	TlsCert           string
	TlsKey            string
	Cors              bool
	PrintHttpRequests bool
	LogToFile         bool
	LogLevel          string
	JwtSecret         string
	ApiKeyHash        string
	SnowflakeWorkerID int64
	SelfContained     bool
	DbUser            string
	DbPassword        string
	DbAddress         string
	DbPort            string
	DbDatabase        string
	RedisAddress      string
	RedisPassword     string
}
