// Package router carries messages between the overlay and the coordinator.
package router

import (
	"encoding/json"
	"fmt"

	"github.com/atomicstack/tab-popup-switcher/internal/tab"
	"github.com/google/uuid"
)

// Message types.
const (
	TypeRequestTabData   = "request_tab_data"
	TypeTabData          = "tab_data"
	TypeActivateTab      = "activate_tab"
	TypeAdvanceSelection = "advance_selection"
	TypeSelectNext       = "popup_select_next"
	TypeSelectPrev       = "popup_select_prev"
	TypeCommit           = "popup_commit"
	TypeKeyRelease       = "key_release"
)

// Envelope wraps every message. ID correlates a response with its request.
type Envelope struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope encodes payload (which may be nil) into a fresh envelope.
func NewEnvelope(msgType string, payload interface{}) (Envelope, error) {
	env := Envelope{ID: uuid.NewString(), Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, fmt.Errorf("router: encode %s: %w", msgType, err)
		}
		env.Payload = raw
	}
	return env, nil
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v interface{}) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("router: %s has no payload", e.Type)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("router: decode %s: %w", e.Type, err)
	}
	return nil
}

// TabData answers request_tab_data.
type TabData struct {
	Type     string          `json:"type"`
	TabData  []tab.Candidate `json:"tabData"`
	Shortcut string          `json:"shortcut,omitempty"`
}

// ActivateTab is the activate_tab payload.
type ActivateTab struct {
	ID tab.ID `json:"id"`
}

// KeyRelease is the key_release payload: a key the user let go of.
type KeyRelease struct {
	Key string `json:"key"`
}
