package server

import (
	"bytes"
	"encoding/json"
	"github.com/labstack/echo/v4"
	"github.com/ryotarai/fwctl/pkg/firewall"
	"github.com/ryotarai/fwctl/pkg/runner"
	"net/http"
	"regexp"
)

var (
	unsafeNameRegexp = regexp.MustCompile(`[^a-zA-Z0-9_\-\s]`)
	unsafePortRegexp = regexp.MustCompile(`[^0-9,\-]`)
)

// ToggleRequest is the body of POST /api/toggle.
type ToggleRequest struct {
	State string `json:"state"`
}

// AddRuleRequest is the body of POST /api/rules.
type AddRuleRequest struct {
	Name     string    `json:"name"`
	Port     portValue `json:"port"`
	Protocol string    `json:"protocol"`
	Action   string    `json:"action"`
}

// portValue accepts a port given either as a JSON string or a number.
// The number 0 decodes as an empty port.
type portValue string

func (p *portValue) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = portValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	// a numeric zero counts as missing
	if f, err := n.Float64(); err == nil && f == 0 {
		*p = ""
		return nil
	}
	*p = portValue(n.String())
	return nil
}

// Status returns the aggregate firewall state.
// GET /api/status
func (s *Server) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, s.firewall.Status(c.Request().Context()))
}

// Toggle switches all profiles on or off.
// POST /api/toggle
func (s *Server) Toggle(c echo.Context) error {
	var req ToggleRequest
	if err := c.Bind(&req); err != nil || (req.State != firewall.StateOn && req.State != firewall.StateOff) {
		return c.JSON(http.StatusBadRequest, runner.Failure("Invalid state provided."))
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	return c.JSON(http.StatusOK, s.firewall.SetState(c.Request().Context(), req.State))
}

// Rules returns the filtered rule listing.
// GET /api/rules
func (s *Server) Rules(c echo.Context) error {
	return c.JSON(http.StatusOK, s.firewall.Rules(c.Request().Context()))
}

// AddRule creates an inbound rule from sanitized request values.
// POST /api/rules
func (s *Server) AddRule(c echo.Context) error {
	var req AddRuleRequest
	if err := c.Bind(&req); err != nil || req.Name == "" || req.Port == "" || req.Protocol == "" || req.Action == "" {
		return c.JSON(http.StatusBadRequest, runner.Failure("Missing required rule parameters."))
	}

	rule := firewall.NewRule{
		Name:     unsafeNameRegexp.ReplaceAllString(req.Name, ""),
		Port:     unsafePortRegexp.ReplaceAllString(string(req.Port), ""),
		Protocol: req.Protocol,
		Action:   req.Action,
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	return c.JSON(http.StatusOK, s.firewall.AddRule(c.Request().Context(), rule))
}
