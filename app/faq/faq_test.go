package faq

import "testing"

func TestLoadDataset(t *testing.T) {
	entries, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("Load() returned no entries")
	}
	for _, e := range entries {
		if e.ID == "" || e.Question == "" || e.Answer == "" {
			t.Errorf("entry %q incomplete: %+v", e.ID, e)
		}
	}
}

func TestByID(t *testing.T) {
	e, ok := ByID("drop-course")
	if !ok {
		t.Fatal("ByID(drop-course) not found")
	}
	if e.Question != "How do I drop a course?" {
		t.Errorf("question = %q", e.Question)
	}
	if _, ok := ByID("no-such-entry"); ok {
		t.Error("ByID(no-such-entry) found something")
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		query  string
		wantID string
		wantOK bool
	}{
		{"when is the deadline to enroll", "enroll-deadline", true},
		{"I want to drop a class", "drop-course", true},
		{"transfer my credits over", "transfer-credits", true},
		{"scholarship and tuition help", "financial-aid", true},
		{"completely unrelated gibberish xyzzy", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Match(tt.query)
		if ok != tt.wantOK {
			t.Errorf("Match(%q) ok = %v, want %v", tt.query, ok, tt.wantOK)
			continue
		}
		if ok && got.ID != tt.wantID {
			t.Errorf("Match(%q) = %q, want %q", tt.query, got.ID, tt.wantID)
		}
	}
}
