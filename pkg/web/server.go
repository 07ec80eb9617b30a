// Package web provides the local reviewer dashboard for a monitoring
// session: REST snapshots plus live websocket status and alert feeds.
package web

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/proctorlabs/go-vigil/internal/log"
	"github.com/proctorlabs/go-vigil/pkg/alert"
	"github.com/proctorlabs/go-vigil/pkg/hub"
	"github.com/proctorlabs/go-vigil/pkg/monitor"
)

// LogEntry represents an event line for the dashboard
type LogEntry struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // info, status, alert, error
	Message string `json:"message"`
}

// maxLogEntries bounds the dashboard event log ring.
const maxLogEntries = 500

// Server is the reviewer dashboard server
type Server struct {
	app    *fiber.App
	port   string
	engine *monitor.Engine

	// Event log buffer (last 500 entries)
	logs   []LogEntry
	logsMu sync.RWMutex

	statusHub *hub.Hub
	alertHub  *hub.Hub
}

// NewServer creates a dashboard server for the given engine.
func NewServer(port string, engine *monitor.Engine) *Server {
	s := &Server{
		port:      port,
		engine:    engine,
		logs:      make([]LogEntry, 0, maxLogEntries),
		statusHub: hub.New("status"),
		alertHub:  hub.New("alerts"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Vigil Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// Static files
	app.Static("/", "./web")

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/alerts", s.handleAlerts)
	api.Delete("/alerts/:id", s.handleDismissAlert)
	api.Get("/config", s.handleConfig)
	api.Get("/logs", s.handleGetLogs)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/alerts", websocket.New(s.handleAlertsWS))

	s.app = app
	return s
}

// Start starts the web server
func (s *Server) Start() error {
	log.Info("dashboard listening", "addr", "http://localhost:"+s.port)

	// Start all hubs
	go s.statusHub.Run()
	go s.alertHub.Run()

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("dashboard server error", "error", err)
		}
	}()
}

// PublishSnapshot broadcasts a tick snapshot to status subscribers.
// Wire it as the engine's update callback.
func (s *Server) PublishSnapshot(snap monitor.Snapshot) {
	s.statusHub.BroadcastJSON(snap)
}

// PublishAlert broadcasts a newly emitted alert and records it in the
// event log. Wire it as the alert manager's emit callback.
func (s *Server) PublishAlert(a alert.Alert) {
	s.alertHub.BroadcastJSON(a)
	s.AddLog("alert", string(a.Type)+": "+a.Message)
}

// AddLog adds an event log entry, evicting the oldest past capacity.
func (s *Server) AddLog(logType, message string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Type:    logType,
		Message: message,
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > maxLogEntries {
		s.logs = s.logs[1:]
	}
	s.logsMu.Unlock()
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
