package format

import "testing"

func TestEscapeHTML(t *testing.T) {
	got := EscapeHTML(`Tom & "Jerry" <shop>`)
	want := "Tom &amp; &#34;Jerry&#34; &lt;shop&gt;"
	if got != want {
		t.Fatalf("EscapeHTML = %q, want %q", got, want)
	}
}

func TestTitle(t *testing.T) {
	if title := Title("A<B"); title != "<b>A&lt;B</b>\n\n" {
		t.Fatalf("Title = %q", title)
	}
}
