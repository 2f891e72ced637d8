package poll

import (
	"errors"
	"testing"
)

func TestParseReactionKey(t *testing.T) {
	pollID, kind, err := ParseReactionKey("5432101234_love")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pollID != "5432101234" || kind != ReactionLove {
		t.Errorf("got (%q, %q)", pollID, kind)
	}

	for _, bad := range []string{"", "nounderscore", "a_b_c", "_like"} {
		if _, _, err := ParseReactionKey(bad); !errors.Is(err, ErrInvalidReactionKey) {
			t.Errorf("ParseReactionKey(%q) err = %v, want ErrInvalidReactionKey", bad, err)
		}
	}
}

func TestReactions_Increment(t *testing.T) {
	r := NewReactions("p1", -100, 12)

	for i := 0; i < 2; i++ {
		if err := r.Increment(ReactionHaha); err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}
	if got := r.Count(ReactionHaha); got != 2 {
		t.Errorf("haha = %d, want 2", got)
	}
	for _, k := range []ReactionKind{ReactionLike, ReactionLove, ReactionAngry} {
		if got := r.Count(k); got != 0 {
			t.Errorf("%s = %d, want 0", k, got)
		}
	}

	if err := r.Increment("wow"); !errors.Is(err, ErrUnknownReaction) {
		t.Errorf("Increment(wow) err = %v, want ErrUnknownReaction", err)
	}
}

func TestReactions_Buttons(t *testing.T) {
	r := NewReactions("p1", -100, 12)
	r.Increment(ReactionAngry)

	buttons := r.Buttons()
	want := []Button{
		{Text: "👍 0", Data: "p1_like"},
		{Text: "❤️ 0", Data: "p1_love"},
		{Text: "😂 0", Data: "p1_haha"},
		{Text: "😡 1", Data: "p1_angry"},
	}
	if len(buttons) != len(want) {
		t.Fatalf("got %d buttons, want %d", len(buttons), len(want))
	}
	for i := range want {
		if buttons[i] != want[i] {
			t.Errorf("button %d = %+v, want %+v", i, buttons[i], want[i])
		}
	}
}
