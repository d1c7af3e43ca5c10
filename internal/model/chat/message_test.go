package chat

import "testing"

func TestReplyTextPrefersResponse(t *testing.T) {
	cases := []struct {
		name  string
		reply Reply
		want  string
	}{
		{name: "response only", reply: Reply{Response: "hi"}, want: "hi"},
		{name: "message only", reply: Reply{Message: "hi"}, want: "hi"},
		{name: "both", reply: Reply{Response: "first", Message: "second"}, want: "first"},
		{name: "empty response falls through", reply: Reply{Response: "", Message: "fallback"}, want: "fallback"},
		{name: "neither", reply: Reply{Status: StatusSuccess}, want: ""},
	}

	for _, tc := range cases {
		if got := tc.reply.Text(); got != tc.want {
			t.Fatalf("%s: Text() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSnapshotLast(t *testing.T) {
	if _, ok := (Snapshot{}).Last(); ok {
		t.Fatal("expected no last turn on empty snapshot")
	}

	snap := Snapshot{Transcript: []Turn{UserTurn("a"), AssistantTurn("b")}}
	last, ok := snap.Last()
	if !ok || last.Role != RoleAssistant || last.Content != "b" {
		t.Fatalf("unexpected last turn: %+v", last)
	}
}
