// Package hub streams store mutations to connected websocket clients, so
// the dashboard sees registrations, removals and logged messages without
// polling. Self-contained mode fans out in-process; otherwise events travel
// through redis pub/sub and every backend instance relays them.
package hub

import (
	"context"
	"encoding/base64"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

type Event struct {
	Type string `msgpack:"type"`
	Data any    `msgpack:"data"`
}

type Client struct {
	SessionID string
	Conn      *websocket.Conn
	mutex     sync.Mutex
}

const feedChannel = "guardlog:feed"

var clients = make(map[string]*Client)
var clientsMutex sync.Mutex

var sugar *zap.SugaredLogger
var redisClient *redis.Client
var redisCtx = context.Background()
var selfContained = true

func Setup(_sugar *zap.SugaredLogger, _redisClient *redis.Client, _selfContained bool) {
	sugar = _sugar
	redisClient = _redisClient
	selfContained = _selfContained

	if !selfContained {
		go relayRedis()
	}
}

// Emit publishes one feed event to every connected client.
func Emit(eventType string, data any) error {
	bytes, err := msgpack.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		return err
	}

	if selfContained {
		broadcast(bytes)
		return nil
	}

	return redisClient.Publish(redisCtx, feedChannel, base64.StdEncoding.EncodeToString(bytes)).Err()
}

func relayRedis() {
	pubsub := redisClient.Subscribe(redisCtx, feedChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		bytes, err := base64.StdEncoding.DecodeString(msg.Payload)
		if err != nil {
			sugar.Error(err)
			continue
		}
		broadcast(bytes)
	}
}

func broadcast(bytes []byte) {
	clientsMutex.Lock()
	defer clientsMutex.Unlock()

	for sessionID, client := range clients {
		client.mutex.Lock()
		err := client.Conn.WriteMessage(websocket.BinaryMessage, bytes)
		client.mutex.Unlock()

		if err != nil {
			sugar.Debugf("Dropping feed client [%s]: %v", sessionID, err)
			client.Conn.Close()
			delete(clients, sessionID)
		}
	}
}

// HandleFeed upgrades the request and keeps the client registered until its
// connection dies.
func HandleFeed(sessionID string, w http.ResponseWriter, r *http.Request) {
	sugar.Debugf("Connecting session [%s] to the feed", sessionID)

	var upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	defer conn.Close()

	client := &Client{SessionID: sessionID, Conn: conn}

	clientsMutex.Lock()
	clients[sessionID] = client
	clientsMutex.Unlock()

	defer func() {
		clientsMutex.Lock()
		delete(clients, sessionID)
		clientsMutex.Unlock()
	}()

	// the feed is one way, incoming reads only detect disconnects
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			sugar.Debugf("Feed client [%s] disconnected: %v", sessionID, err)
			return
		}
	}
}

func GetClient(sessionID string) (*Client, bool) {
	clientsMutex.Lock()
	defer clientsMutex.Unlock()

	client, exists := clients[sessionID]
	return client, exists
}
