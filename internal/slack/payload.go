package slack

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	InteractionBlockActions = "block_actions"
	CommandToneReject       = "/tone-reject"
)

var ErrBadPayload = errors.New("slack: bad payload")

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type Action struct {
	ActionID string `json:"action_id"`
	Value    string `json:"value"`
}

// Interaction es el subconjunto del payload de block_actions que se usa.
type Interaction struct {
	Type        string   `json:"type"`
	User        User     `json:"user"`
	ResponseURL string   `json:"response_url"`
	Actions     []Action `json:"actions"`
}

// FirstAction devuelve la accion pulsada; Slack manda una por interaccion de boton.
func (i Interaction) FirstAction() (Action, bool) {
	if i.Type != InteractionBlockActions || len(i.Actions) == 0 {
		return Action{}, false
	}
	return i.Actions[0], true
}

// ParseInteraction decodifica el campo form "payload" de /slack/interact.
func ParseInteraction(raw string) (Interaction, error) {
	if strings.TrimSpace(raw) == "" {
		return Interaction{}, fmt.Errorf("%w: missing payload", ErrBadPayload)
	}
	var out Interaction
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Interaction{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return out, nil
}

type SlashCommand struct {
	Command     string
	Text        string
	UserID      string
	ResponseURL string
}

func SlashCommandFromForm(form url.Values) (SlashCommand, error) {
	cmd := SlashCommand{
		Command:     strings.TrimSpace(form.Get("command")),
		Text:        strings.TrimSpace(form.Get("text")),
		UserID:      strings.TrimSpace(form.Get("user_id")),
		ResponseURL: strings.TrimSpace(form.Get("response_url")),
	}
	if cmd.Command == "" {
		return SlashCommand{}, fmt.Errorf("%w: missing command", ErrBadPayload)
	}
	return cmd, nil
}

const responseURLHost = "hooks.slack.com"

// IsResponseURL acepta solo response_url de Slack: https, host hooks.slack.com, puerto por defecto.
func IsResponseURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return u.Scheme == "https" && u.User == nil && u.Host == responseURLHost
}
