package i18n

import (
	"context"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "InvalidCredentials")
	if got != "Invalid roll number or password." {
		t.Errorf("T(InvalidCredentials) = %q, want 'Invalid roll number or password.'", got)
	}

	got = T(ctx, "SubmissionAccepted")
	if got != "Your answers have been submitted." {
		t.Errorf("T(SubmissionAccepted) = %q, want 'Your answers have been submitted.'", got)
	}
}

func TestTranslateRussian(t *testing.T) {
	ctx := initLang(t, "ru")

	got := T(ctx, "AlreadyFinalized")
	if got != "Этот экзамен уже был сдан." {
		t.Errorf("T(AlreadyFinalized) = %q, want 'Этот экзамен уже был сдан.'", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "AlreadyAttempted", map[string]any{"Name": "Priya"})
	want := "Priya, you have already taken this exam. Only one attempt is allowed."
	if got != want {
		t.Errorf("Td(AlreadyAttempted) = %q, want %q", got, want)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}
