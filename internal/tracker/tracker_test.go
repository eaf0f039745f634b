package tracker

import "testing"

func TestParseKey(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "marker and key",
			body: "Some description.\n\n=== DO NOT REMOVE ===\nKey: abc123\n",
			want: "abc123",
		},
		{
			name: "key runs to end of line",
			want: "a b:c=",
			body: "=== DO NOT REMOVE ===\nKey: a b:c=\ntrailing text",
		},
		{
			name: "no marker",
			body: "Key: abc123\n",
			want: "",
		},
		{
			name: "marker without key line",
			body: "=== DO NOT REMOVE ===\nnothing here\n",
			want: "",
		},
		{
			name: "marker at end of body",
			body: "text\n=== DO NOT REMOVE ===",
			want: "",
		},
		{
			name: "crlf line endings",
			body: "text\r\n=== DO NOT REMOVE ===\r\nKey: xyz\r\n",
			want: "xyz",
		},
		{
			name: "empty body",
			body: "",
			want: "",
		},
		{
			name: "marker must match exactly",
			body: "== DO NOT REMOVE ==\nKey: abc\n",
			want: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseKey(tc.body); got != tc.want {
				t.Errorf("ParseKey = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestKeyBlockRoundTrip(t *testing.T) {
	for _, k := range []string{"abc", "with spaces", "base64+/=chars"} {
		body := "prose before the marker\n\n" + KeyBlock(k)
		if got := ParseKey(body); got != k {
			t.Errorf("ParseKey(KeyBlock(%q)) = %q", k, got)
		}
	}
}
