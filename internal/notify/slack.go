// Package notify sends Slack webhook notifications for migration runs.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pcrm/legacy-migrate/internal/config"
)

// Notifier sends notifications to Slack.
type Notifier struct {
	config     *config.SlackConfig
	httpClient *http.Client
}

// SlackMessage represents a Slack webhook message.
type SlackMessage struct {
	Channel     string            `json:"channel,omitempty"`
	Username    string            `json:"username,omitempty"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

// SlackAttachment represents a Slack message attachment.
type SlackAttachment struct {
	Color     string       `json:"color,omitempty"`
	Title     string       `json:"title,omitempty"`
	Fields    []SlackField `json:"fields,omitempty"`
	Footer    string       `json:"footer,omitempty"`
	Timestamp int64        `json:"ts,omitempty"`
}

// SlackField represents a field in a Slack attachment.
type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// New creates a new Slack notifier.
func New(cfg *config.SlackConfig) *Notifier {
	if cfg == nil {
		cfg = &config.SlackConfig{Enabled: false}
	}
	return &Notifier{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// IsEnabled returns true if notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	return n.config != nil && n.config.Enabled && n.config.WebhookURL != ""
}

// MigrationStarted announces a new migration run. sourceHost must
// already be masked by the caller.
func (n *Notifier) MigrationStarted(runID, sourceHost string, tableCount int) error {
	if !n.IsEnabled() {
		return nil
	}
	msg := SlackMessage{
		Channel:   n.config.Channel,
		Username:  n.getUsername(),
		IconEmoji: ":rocket:",
		Attachments: []SlackAttachment{
			{
				Color: "#36a64f",
				Title: "Legacy Migration Started",
				Fields: []SlackField{
					{Title: "Run ID", Value: runID, Short: true},
					{Title: "Tables", Value: fmt.Sprintf("%d", tableCount), Short: true},
					{Title: "Source", Value: sourceHost, Short: false},
				},
				Footer:    "legacy-migrate",
				Timestamp: time.Now().Unix(),
			},
		},
	}
	return n.send(msg)
}

// MigrationCompleted announces a finished run, including any failed
// tables, since table failures do not abort the run.
func (n *Notifier) MigrationCompleted(runID string, duration time.Duration, completed, failed int, rows int64, failedTables []string) error {
	if !n.IsEnabled() {
		return nil
	}

	color := "#36a64f"
	icon := ":white_check_mark:"
	title := "Legacy Migration Completed"
	fields := []SlackField{
		{Title: "Run ID", Value: runID, Short: true},
		{Title: "Duration", Value: formatDuration(duration), Short: true},
		{Title: "Tables", Value: fmt.Sprintf("%d completed, %d failed", completed, failed), Short: true},
		{Title: "Rows Migrated", Value: formatNumberWithCommas(rows), Short: true},
	}
	if failed > 0 {
		color = "#ffc107"
		icon = ":warning:"
		title = "Legacy Migration Completed With Errors"
		fields = append(fields, SlackField{
			Title: "Failed Tables",
			Value: summarizeTables(failedTables),
			Short: false,
		})
	}

	msg := SlackMessage{
		Channel:   n.config.Channel,
		Username:  n.getUsername(),
		IconEmoji: icon,
		Attachments: []SlackAttachment{
			{
				Color:     color,
				Title:     title,
				Fields:    fields,
				Footer:    "legacy-migrate",
				Timestamp: time.Now().Unix(),
			},
		},
	}
	return n.send(msg)
}

// MigrationFailed announces a run that failed before table processing
// could start (connection or introspection errors).
func (n *Notifier) MigrationFailed(runID string, err error, duration time.Duration) error {
	if !n.IsEnabled() {
		return nil
	}

	errMsg := "Unknown error"
	if err != nil {
		errMsg = err.Error()
		if len(errMsg) > 500 {
			errMsg = errMsg[:500] + "..."
		}
	}

	msg := SlackMessage{
		Channel:   n.config.Channel,
		Username:  n.getUsername(),
		IconEmoji: ":x:",
		Attachments: []SlackAttachment{
			{
				Color: "#dc3545",
				Title: "Legacy Migration Failed",
				Fields: []SlackField{
					{Title: "Run ID", Value: runID, Short: true},
					{Title: "Duration", Value: duration.Round(time.Second).String(), Short: true},
					{Title: "Error", Value: errMsg, Short: false},
				},
				Footer:    "legacy-migrate",
				Timestamp: time.Now().Unix(),
			},
		},
	}
	return n.send(msg)
}

func (n *Notifier) send(msg SlackMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	resp, err := n.httpClient.Post(n.config.WebhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("sending to Slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Slack returned status %d", resp.StatusCode)
	}
	return nil
}

func (n *Notifier) getUsername() string {
	if n.config.Username != "" {
		return n.config.Username
	}
	return "legacy-migrate"
}

func summarizeTables(tables []string) string {
	if len(tables) <= 5 {
		return strings.Join(tables, ", ")
	}
	return fmt.Sprintf("%s... and %d more", strings.Join(tables[:3], ", "), len(tables)-3)
}

func formatNumberWithCommas(n int64) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	var result []byte
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
