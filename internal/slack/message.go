package slack

import (
	"encoding/json"
	"fmt"
	"strings"

	"tone-drift/internal/domain"
)

// Identificadores de los botones del aviso de drift.
const (
	ActionApprove = "approve_signature_update"
	ActionReject  = "reject_signature_update"
)

// Message es el cuerpo que aceptan tanto el incoming webhook como el response_url.
type Message struct {
	Text            string  `json:"text"`
	Blocks          []Block `json:"blocks,omitempty"`
	ResponseType    string  `json:"response_type,omitempty"`
	ReplaceOriginal bool    `json:"replace_original,omitempty"`
}

type Block struct {
	Type     string      `json:"type"`
	Text     *TextObject `json:"text,omitempty"`
	Elements []Element   `json:"elements,omitempty"`
}

type TextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Element es un boton de un bloque actions.
type Element struct {
	Type     string      `json:"type"`
	Text     *TextObject `json:"text,omitempty"`
	Style    string      `json:"style,omitempty"`
	ActionID string      `json:"action_id,omitempty"`
	Value    string      `json:"value,omitempty"`
}

func markdown(text string) *TextObject {
	return &TextObject{Type: "mrkdwn", Text: text}
}

func plain(text string) *TextObject {
	return &TextObject{Type: "plain_text", Text: text}
}

// DriftAlert arma el aviso con la firma sugerida y los botones aprobar/rechazar.
// Ambos botones llevan el token firmado de la propuesta.
func DriftAlert(p domain.CorrectionProposal, mentionUserIDs []string, mentionChannel string) Message {
	suggestion, err := json.MarshalIndent(p.Traits, "", "  ")
	if err != nil {
		suggestion = []byte("{}")
	}

	return Message{
		Text: fmt.Sprintf("%s📢 *Tone Drift Detected* for brand `%s`", mentionPrefix(mentionUserIDs, mentionChannel), p.BrandID),
		Blocks: []Block{
			{
				Type: "section",
				Text: markdown(fmt.Sprintf("*Suggested tone signature update:*\n```%s```\n_%d evaluations flagged with low tone alignment._", suggestion, p.DriftedCount)),
			},
			{
				Type: "actions",
				Elements: []Element{
					{Type: "button", Text: plain("✅ Approve & Save"), Style: "primary", ActionID: ActionApprove, Value: p.Token},
					{Type: "button", Text: plain("❌ Reject with Comment"), Style: "danger", ActionID: ActionReject, Value: p.Token},
				},
			},
		},
	}
}

func mentionPrefix(userIDs []string, channel string) string {
	mentions := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id = strings.TrimSpace(id); id != "" {
			mentions = append(mentions, "<@"+id+">")
		}
	}
	if len(mentions) > 0 {
		return strings.Join(mentions, " ") + " "
	}
	if channel = strings.TrimSpace(channel); channel != "" {
		return channel + " "
	}
	return ""
}

// Reply es una respuesta efimera para response_url o para un slash command.
func Reply(text string) Message {
	return Message{Text: text, ResponseType: "ephemeral"}
}
