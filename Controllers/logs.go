package Controllers

import (
	"bufio"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
)

// LogEntry is one JSON line written by middleware.LoggingMiddleware.
type LogEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	Method        string    `json:"method"`
	Path          string    `json:"path"`
	Status        int       `json:"status"`
	LatencyMs     float64   `json:"latency"`
	IP            string    `json:"ip"`
	UserAgent     string    `json:"user_agent"`
	RequestID     string    `json:"request_id"`
	OwnerID       string    `json:"owner_id,omitempty"`
	Error         string    `json:"error,omitempty"`
	ContentLength int       `json:"content_length"`
}

// LogGroup aggregates the entries of one method and path
type LogGroup struct {
	Path        string  `json:"path"`
	Method      string  `json:"method"`
	Count       int     `json:"count"`
	AvgLatency  float64 `json:"avg_latency_ms"`
	MinLatency  float64 `json:"min_latency_ms"`
	MaxLatency  float64 `json:"max_latency_ms"`
	SuccessRate float64 `json:"success_rate"`
}

// RequestLogHandler lets admins read the request log file.
type RequestLogHandler struct {
	Path string
}

func NewRequestLogHandler(path string) *RequestLogHandler {
	return &RequestLogHandler{Path: path}
}

// GetLogs groups logged requests by route. date_from and date_to default to
// today; path, method, status and owner narrow the entries first.
func (h *RequestLogHandler) GetLogs(c *fiber.Ctx) error {
	if ownerOf(c).Role != Models.RoleAdmin {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{
			"message": "Admin access required",
		})
	}

	today := now()
	from := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	to := from.AddDate(0, 0, 1)
	if raw := c.Query("date_from"); raw != "" {
		t, err := time.ParseInLocation(Models.DateLayout, raw, today.Location())
		if err != nil {
			return badRequest(c, "Invalid date_from format. Use YYYY-MM-DD", err)
		}
		from = t
	}
	if raw := c.Query("date_to"); raw != "" {
		t, err := time.ParseInLocation(Models.DateLayout, raw, today.Location())
		if err != nil {
			return badRequest(c, "Invalid date_to format. Use YYYY-MM-DD", err)
		}
		to = t.AddDate(0, 0, 1)
	}

	entries, err := readLogFile(h.Path, from, to)
	if err != nil {
		return serverError(c, "Failed to read logs", err)
	}

	status, _ := strconv.Atoi(c.Query("status"))
	entries = filterLogs(entries, c.Query("path"), c.Query("method"), status, c.Query("owner"))
	groups := groupLogs(entries)

	page := pageFrom(c)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Logs retrieved successfully",
		"data":    paginate(groups, page),
		"meta": fiber.Map{
			"total_logs": len(entries),
			"groups":     page.meta(len(groups)),
			"date_from":  from,
			"date_to":    to,
		},
	})
}

// readLogFile returns entries in [from, to). A missing file is an empty log.
func readLogFile(path string, from, to time.Time) ([]LogEntry, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry.Timestamp.Before(from) || !entry.Timestamp.Before(to) {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}

func filterLogs(entries []LogEntry, path, method string, status int, owner string) []LogEntry {
	out := entries[:0:0]
	for _, e := range entries {
		if path != "" && !strings.Contains(e.Path, path) {
			continue
		}
		if method != "" && !strings.EqualFold(e.Method, method) {
			continue
		}
		if status != 0 && e.Status != status {
			continue
		}
		if owner != "" && e.OwnerID != owner {
			continue
		}
		out = append(out, e)
	}
	return out
}

// groupLogs sorts groups by request count, busiest first.
func groupLogs(entries []LogEntry) []LogGroup {
	index := map[string]int{}
	groups := []LogGroup{}
	success := map[string]int{}
	for _, e := range entries {
		key := e.Method + " " + e.Path
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, LogGroup{
				Path:       e.Path,
				Method:     e.Method,
				MinLatency: e.LatencyMs,
				MaxLatency: e.LatencyMs,
			})
		}
		g := &groups[i]
		g.Count++
		g.AvgLatency += e.LatencyMs
		if e.LatencyMs < g.MinLatency {
			g.MinLatency = e.LatencyMs
		}
		if e.LatencyMs > g.MaxLatency {
			g.MaxLatency = e.LatencyMs
		}
		if e.Status < http.StatusBadRequest {
			success[key]++
		}
	}

	for i := range groups {
		g := &groups[i]
		key := g.Method + " " + g.Path
		g.SuccessRate = float64(success[key]) / float64(g.Count) * 100
		g.AvgLatency /= float64(g.Count)
	}
	sort.SliceStable(groups, func(a, b int) bool { return groups[a].Count > groups[b].Count })
	return groups
}
