package templates

import (
	"strings"
	"testing"
	"time"
)

func TestRenderWelcome(t *testing.T) {
	data := NewEmailData("Ada", "ada@example.com", WithTime(time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)))
	subject, text, html, err := Render(Welcome, data)
	if err != nil {
		t.Fatal(err)
	}
	if subject != "Welcome to Event Hub" {
		t.Fatalf("subject = %q", subject)
	}
	if !strings.Contains(text, "Hi Ada") || !strings.Contains(text, "02 January 2026, 03:04") {
		t.Fatalf("text = %q", text)
	}
	if !strings.Contains(html, "<strong>ada@example.com</strong>") {
		t.Fatalf("html = %q", html)
	}
}

func TestRenderWelcomeDefaultsName(t *testing.T) {
	_, text, _, err := Render(Welcome, NewEmailData("", "x@example.com"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Hi there") {
		t.Fatalf("text = %q", text)
	}
}

func TestRenderMessageEscapesBody(t *testing.T) {
	html, err := RenderHTML(Message, PlainMessage("x@example.com", "Hello", "line one\n<b>line two</b>"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "<p>line one</p>") || !strings.Contains(html, "&lt;b&gt;line two&lt;/b&gt;") {
		t.Fatalf("html = %q", html)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	if _, _, _, err := Render("nope", nil); err == nil {
		t.Fatal("expected error for missing template")
	}
}
