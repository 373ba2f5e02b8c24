package prep

import (
	"context"
	"errors"
	"strings"
	"testing"

	"recipe-prep/internal/core/directions"
	"recipe-prep/internal/pkg/common"
)

const encodedSample = `{'directions': u'Prep\n20 m\nCook\n1 h\nReady In\n1 h 40 m\nGrease and flour two pans...\nBake for 40 to 60 minutes.', 'source': 'allrecipes'}`

func newTestProcessor(field string) *Processor {
	return NewProcessor(field, directions.DefaultOptions())
}

func minutes(v *int) int {
	if v == nil {
		return -1
	}
	return *v
}

func TestParseDirectionsInput(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"encoded mapping", encodedSample, "encoded_mapping"},
		{"plain text", "Mix and bake.", "plain_text"},
		{"broken encoding", "{'directions': 'Mix", "plain_text"},
		{"encoded non mapping", "{1, 2}", "plain_text"},
		{"nil", nil, "absent"},
		{"nil record", (*common.Record)(nil), "absent"},
		{"record", common.RecordOf(DirectionsKey, "Mix."), "mapping"},
		{"map", map[string]interface{}{DirectionsKey: "Mix."}, "mapping"},
		{"number", 42, "plain_text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inputType(ParseDirectionsInput(tt.value))
			if got != tt.want {
				t.Errorf("ParseDirectionsInput(%v) = %s, want %s", tt.value, got, tt.want)
			}
		})
	}
}

func TestPlainTextMapping(t *testing.T) {
	rec := PlainText("{'directions': 'Mix").Mapping()
	if rec.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", rec.Len())
	}
	if v, _ := rec.Get(DirectionsKey); v != "{'directions': 'Mix" {
		t.Errorf("directions = %v", v)
	}
}

func TestProcessValueEncodedMapping(t *testing.T) {
	res := newTestProcessor("").ProcessValue(encodedSample)

	if minutes(res.PrepMinutes) != 20 || minutes(res.CookMinutes) != 60 || minutes(res.ReadyMinutes) != 100 {
		t.Errorf("minutes = %d/%d/%d, want 20/60/100",
			minutes(res.PrepMinutes), minutes(res.CookMinutes), minutes(res.ReadyMinutes))
	}

	body, _ := res.Directions.Get(DirectionsKey)
	if s, _ := body.(string); !strings.HasPrefix(s, "Grease and flour two pans...") {
		t.Errorf("directions = %q", body)
	}
	if src, _ := res.Directions.Get("source"); src != "allrecipes" {
		t.Errorf("source = %v, want allrecipes", src)
	}
}

func TestProcessValueMappingWithoutDirections(t *testing.T) {
	res := newTestProcessor("").ProcessValue("{'title': 'Toast'}")

	if res.PrepMinutes != nil || res.CookMinutes != nil || res.ReadyMinutes != nil {
		t.Error("expected no durations")
	}
	if v, ok := res.Directions.Get(DirectionsKey); !ok || v != nil {
		t.Errorf("directions = %v, %v; want nil, true", v, ok)
	}
	if v, _ := res.Directions.Get("title"); v != "Toast" {
		t.Errorf("title = %v", v)
	}
}

func TestProcessRecord(t *testing.T) {
	in := common.RecordOf(
		"course_id", 1,
		"cooking_directions", "Cook: 45 min. Mix everything and bake.",
		"title", "Cake",
	)

	out := newTestProcessor("cooking_directions").Process(in)

	wantKeys := []string{"course_id", "cooking_directions", "title", FieldPrepMinutes, FieldCookMinutes, FieldReadyMinutes}
	keys := out.Keys()
	if len(keys) != len(wantKeys) {
		t.Fatalf("Keys() = %v, want %v", keys, wantKeys)
	}
	for i := range wantKeys {
		if keys[i] != wantKeys[i] {
			t.Errorf("key %d = %q, want %q", i, keys[i], wantKeys[i])
		}
	}

	cook, _ := out.Get(FieldCookMinutes)
	if v, ok := cook.(*int); !ok || v == nil || *v != 45 {
		t.Errorf("cook_minutes = %v, want 45", cook)
	}
	prep, _ := out.Get(FieldPrepMinutes)
	if v, _ := prep.(*int); v != nil {
		t.Errorf("prep_minutes = %d, want nil", *v)
	}

	mapping, _ := out.Get("cooking_directions")
	rec, ok := mapping.(*common.Record)
	if !ok {
		t.Fatalf("cooking_directions = %T, want *common.Record", mapping)
	}
	body, _ := rec.Get(DirectionsKey)
	if s, _ := body.(string); !strings.Contains(s, "Mix everything and bake.") {
		t.Errorf("body = %q", body)
	}

	// 輸入資料列不應被修改
	if v, _ := in.Get("cooking_directions"); v != "Cook: 45 min. Mix everything and bake." {
		t.Errorf("input mutated: %v", v)
	}
}

func TestProcessAbsentDirections(t *testing.T) {
	out := newTestProcessor("").Process(common.RecordOf("course_id", 9))

	v, ok := out.Get(DirectionsKey)
	if !ok || v != nil {
		t.Errorf("directions = %v, %v; want nil, true", v, ok)
	}
	for _, f := range []string{FieldPrepMinutes, FieldCookMinutes, FieldReadyMinutes} {
		m, _ := out.Get(f)
		if p, _ := m.(*int); p != nil {
			t.Errorf("%s = %d, want nil", f, *p)
		}
	}

	if out := newTestProcessor("").Process(nil); out.Len() != 4 {
		t.Errorf("Process(nil) Len() = %d, want 4", out.Len())
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	p := newTestProcessor("")
	first := p.Process(common.RecordOf(DirectionsKey, encodedSample))
	second := p.Process(first)

	firstMapping, _ := first.Get(DirectionsKey)
	secondMapping, _ := second.Get(DirectionsKey)
	firstBody, _ := firstMapping.(*common.Record).Get(DirectionsKey)
	secondBody, _ := secondMapping.(*common.Record).Get(DirectionsKey)

	if firstBody != secondBody {
		t.Errorf("second pass changed body:\n%q\n%q", firstBody, secondBody)
	}
	for _, f := range []string{FieldPrepMinutes, FieldCookMinutes, FieldReadyMinutes} {
		m, _ := second.Get(f)
		if v, _ := m.(*int); v != nil {
			t.Errorf("second pass %s = %d, want nil", f, *v)
		}
	}
}

func TestProcessNeverPanics(t *testing.T) {
	p := newTestProcessor("")
	values := []interface{}{
		"",
		"{",
		"{}",
		"{'directions': None}",
		"{'directions': 12}",
		"{'directions': ['a']}",
		"u'just a string'",
		"Prep\nCook\nReady In",
		3.5,
		true,
		[]interface{}{"x"},
		common.NewRecord(),
	}
	for _, v := range values {
		out := p.Process(common.RecordOf(DirectionsKey, v))
		if out == nil {
			t.Errorf("Process(%v) returned nil", v)
		}
	}
}

func TestHandle(t *testing.T) {
	p := NewProcessor(DirectionsKey, directions.DefaultOptions())

	out, err := p.Handle(context.Background(), common.RecordOf(DirectionsKey, "Cook\n10 m\nStir."))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	v, _ := out.Get(FieldCookMinutes)
	if cook, ok := v.(*int); !ok || minutes(cook) != 10 {
		t.Errorf("cook minutes = %v, want 10", v)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Handle(ctx, common.NewRecord()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
