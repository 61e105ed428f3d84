package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseActionMalformed(t *testing.T) {
	if _, err := ParseAction([]byte("{not json")); !errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("expected ErrMalformedMessage, got %v", err)
	}
}

func TestParseAction(t *testing.T) {
	raw := []byte(`{"type":"EnterRoom","actor":"spoofed","sdp":"","parameters":{"room_id":"r1"}}`)
	act, err := ParseAction(raw)
	if err != nil {
		t.Fatalf("ParseAction: %v", err)
	}
	if act.Kind() != ActionEnterRoom {
		t.Fatalf("kind %q, want EnterRoom", act.Kind())
	}
	if act.Param("room_id") != "r1" {
		t.Fatalf("room_id %q, want r1", act.Param("room_id"))
	}
	if act.Param("missing") != "" {
		t.Fatal("absent parameter should read as empty")
	}
}

func TestParamNilMap(t *testing.T) {
	act, err := ParseAction([]byte(`{"type":"RequestSkin"}`))
	if err != nil {
		t.Fatalf("ParseAction: %v", err)
	}
	if act.Param("anything") != "" {
		t.Fatal("nil parameters should read as empty")
	}
}

func TestIsSignaling(t *testing.T) {
	for _, k := range []ActionKind{ActionOffer, ActionAnswer, ActionCandidate} {
		if !k.IsSignaling() {
			t.Fatalf("%s should be signaling", k)
		}
	}
	if ActionEnterRoom.IsSignaling() {
		t.Fatal("EnterRoom is not signaling")
	}
}

func TestSignalEnvelopeRoundsVerbatim(t *testing.T) {
	sdp := "v=0\r\no=- 123 2 IN IP4 0.0.0.0\r\n"
	env := SignalEnvelope{Kind: ActionOffer, From: "abc", Data: sdp}
	raw, err := env.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var got SignalEnvelope
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Data != sdp {
		t.Fatalf("payload altered: %q", got.Data)
	}
}
