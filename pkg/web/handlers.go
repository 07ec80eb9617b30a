package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/proctorlabs/go-vigil/pkg/alert"
	"github.com/proctorlabs/go-vigil/pkg/hub"
)

// handleStatus returns the latest tick snapshot
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.engine.Snapshot())
}

// handleAlerts returns the alert log, most recent first
func (s *Server) handleAlerts(c *fiber.Ctx) error {
	return c.JSON(s.engine.Alerts().Alerts())
}

// handleDismissAlert removes a single alert by id. The message keeps
// suppressing duplicates until its cooldown lapses.
func (s *Server) handleDismissAlert(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := s.engine.Alerts().Dismiss(id); err != nil {
		if errors.Is(err, alert.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "alert not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	s.AddLog("info", "alert dismissed: "+id)

	return c.JSON(fiber.Map{"dismissed": id})
}

// handleConfig returns the active engine configuration
func (s *Server) handleConfig(c *fiber.Ctx) error {
	return c.JSON(s.engine.Config())
}

// handleGetLogs returns recent event log entries
func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	return c.JSON(s.logs)
}

// handleStatusWS streams tick snapshots
func (s *Server) handleStatusWS(c *websocket.Conn) {
	client := hub.NewClient(s.statusHub, c)
	client.Run()
}

// handleAlertsWS streams emitted alerts
func (s *Server) handleAlertsWS(c *websocket.Conn) {
	client := hub.NewClient(s.alertHub, c)
	client.Run()
}
