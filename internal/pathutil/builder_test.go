package pathutil

import "testing"

func TestPathBuilder_Basic(t *testing.T) {
	p := &PathBuilder{}
	p.Push("$")
	p.Push("title")

	got := p.String()
	want := "$.title"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestPathBuilder_WithIndex(t *testing.T) {
	p := &PathBuilder{}
	p.Push("$")
	p.Push("schemas")
	p.PushIndex(0)
	p.Push("json")

	got := p.String()
	want := "$.schemas[0].json"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestPathBuilder_PushKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"displayName", "$.displayName"},
		{"/foo", "$['/foo']"},
		{"application/json", "$['application/json']"},
		{"it's", `$['it\'s']`},
		{"", "$['']"},
		{"200", "$['200']"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			p := &PathBuilder{}
			p.Push("$")
			p.PushKey(tt.key)
			if got := p.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPathBuilder_PushPop(t *testing.T) {
	p := &PathBuilder{}
	p.Push("a")
	p.PushKey("/b")
	p.Pop()
	p.Push("c")
	p.PushIndex(2)
	p.Pop()

	got := p.String()
	want := "a.c"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if p.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", p.Depth())
	}
}

func TestPathBuilder_PopEmpty(t *testing.T) {
	p := &PathBuilder{}
	p.Pop() // Should not panic
	if got := p.String(); got != "" {
		t.Errorf("String() after Pop on empty = %q, want empty", got)
	}
}

func TestPathBuilder_Reset(t *testing.T) {
	p := &PathBuilder{}
	p.Push("a")
	p.Push("b")
	p.Reset()

	if got := p.String(); got != "" {
		t.Errorf("String() after Reset = %q, want empty", got)
	}

	p.Push("c")
	if got := p.String(); got != "c" {
		t.Errorf("String() after Reset+Push = %q, want %q", got, "c")
	}
}

func TestPool_GetPut(t *testing.T) {
	p := Get("$")
	if got := p.String(); got != "$" {
		t.Fatalf("Get(\"$\") = %q, want %q", got, "$")
	}

	p.Push("test")
	Put(p)

	p2 := Get("")
	if p2.String() != "" {
		t.Errorf("Get(\"\") returned non-empty PathBuilder: %q", p2.String())
	}
	p2.PushKey("title")
	if got := p2.String(); got != "title" {
		t.Errorf("String() = %q, want %q", got, "title")
	}
	Put(p2)
	Put(nil) // Should not panic
}
