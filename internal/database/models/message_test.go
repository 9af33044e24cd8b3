package models

import (
	"reflect"
	"testing"
)

func TestMessage_LabelRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
	}{
		{"two labels", []string{"scheduling", "work"}},
		{"single label", []string{"invoice"}},
		{"empty", []string{}},
		{"nil stored as empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg Message
			msg.SetLabels(tt.labels)

			got := msg.LabelList()
			if got == nil {
				t.Fatal("LabelList() returned nil, want non-nil slice")
			}
			want := tt.labels
			if want == nil {
				want = []string{}
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("LabelList() = %v, want %v", got, want)
			}
		})
	}
}

func TestMessage_LabelListTolerantOfBadData(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty string", ""},
		{"not json", "scheduling"},
		{"wrong type", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := Message{Labels: tt.raw}
			got := msg.LabelList()
			if got == nil {
				t.Fatal("LabelList() returned nil")
			}
			if len(got) != 0 {
				t.Errorf("LabelList() = %v, want empty", got)
			}
		})
	}
}
