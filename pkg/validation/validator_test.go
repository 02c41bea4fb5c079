package validation

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type signup struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Role     string `json:"role" binding:"omitempty,role"`
}

func bind(t *testing.T, body string) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Init()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req signup
	return ToDetails(c.ShouldBindJSON(&req))
}

func TestToDetails(t *testing.T) {
	if d := bind(t, `{"email":"a@example.com","password":"longenough"}`); d != nil {
		t.Fatalf("valid payload: %v", d)
	}

	d := bind(t, `{"email":"nope","password":"short","role":"root"}`)
	want := map[string]string{
		"email":    "must be a valid email",
		"password": "must be 8 to 72 characters",
		"role":     "must be one of: admin, member",
	}
	for field, msg := range want {
		if d[field] != msg {
			t.Errorf("%s = %q, want %q", field, d[field], msg)
		}
	}

	long := strings.Repeat("x", 73)
	if d := bind(t, `{"email":"a@example.com","password":"`+long+`"}`); d["password"] != "must be 8 to 72 characters" {
		t.Fatalf("overlong password: %v", d)
	}

	if d := bind(t, `{"email":`); d["payload"] == "" {
		t.Fatalf("broken json: %v", d)
	}
}
