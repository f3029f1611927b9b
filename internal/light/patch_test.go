package light

import (
	"encoding/json"
	"testing"
)

func TestRoomPatch_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		unchanged bool
		clear     bool
		roomID    string
	}{
		{"absent", `{"name":"Lamp"}`, true, false, ""},
		{"null", `{"room_id":null}`, false, true, ""},
		{"value", `{"room_id":"room-1"}`, false, false, "room-1"},
		{"empty string", `{"room_id":""}`, false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				Name   *string   `json:"name"`
				RoomID RoomPatch `json:"room_id"`
			}
			if err := json.Unmarshal([]byte(tt.body), &body); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}

			p := body.RoomID
			if p.IsUnchanged() != tt.unchanged {
				t.Errorf("IsUnchanged() = %v, want %v", p.IsUnchanged(), tt.unchanged)
			}
			if p.IsClear() != tt.clear {
				t.Errorf("IsClear() = %v, want %v", p.IsClear(), tt.clear)
			}
			id, set := p.RoomID()
			if wantSet := !tt.unchanged && !tt.clear; set != wantSet {
				t.Errorf("RoomID() set = %v, want %v", set, wantSet)
			}
			if id != tt.roomID {
				t.Errorf("RoomID() = %q, want %q", id, tt.roomID)
			}
		})
	}
}

func TestRoomPatch_UnmarshalJSONRejectsNonString(t *testing.T) {
	for _, body := range []string{`{"room_id":42}`, `{"room_id":{}}`, `{"room_id":true}`} {
		var v struct {
			RoomID RoomPatch `json:"room_id"`
		}
		if err := json.Unmarshal([]byte(body), &v); err == nil {
			t.Errorf("Unmarshal(%s) should fail", body)
		}
	}
}

func TestRoomPatch_ZeroValueIsKeep(t *testing.T) {
	var p RoomPatch
	if p != KeepRoom() {
		t.Error("zero RoomPatch should equal KeepRoom()")
	}
	if got := SetRoom("r").String(); got != "set(r)" {
		t.Errorf("String() = %q, want %q", got, "set(r)")
	}
	if got := ClearRoom().String(); got != "clear" {
		t.Errorf("String() = %q, want %q", got, "clear")
	}
}
