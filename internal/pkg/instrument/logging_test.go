package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestLogger_MasksAndStampsCorrelationID(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := newLogger(&buf, "passgate", nil, []string{"code", " OTP "})
	ctx := SetCorrelationID(context.Background(), "cid-123")

	// Act
	logger.InfoContext(ctx, "passcode issued",
		"email", "a@b.test",
		"code", "123456",
		"payload", map[string]any{"otp": "999999", "tenant": "acme"},
		slog.Group("nested", "code", "654321"),
	)

	// Assert
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if line["code"] != "***" {
		t.Fatalf("code not masked: %v", line["code"])
	}
	if line["_cID"] != "cid-123" || line["service"] != "passgate" {
		t.Fatalf("missing context attrs: %v", line)
	}
	if line["severity"] != "INFO" {
		t.Fatalf("severity=%v", line["severity"])
	}
	payload, _ := line["payload"].(map[string]any)
	if payload["otp"] != "***" || payload["tenant"] != "acme" {
		t.Fatalf("payload not masked: %v", payload)
	}
	nested, _ := line["nested"].(map[string]any)
	if nested["code"] != "***" {
		t.Fatalf("nested not masked: %v", nested)
	}
}

func TestCorrelationID(t *testing.T) {
	// Arrange
	ctx := context.Background()

	// Act
	empty := GetCorrelationID(ctx)
	got := GetCorrelationID(SetCorrelationID(ctx, "abc"))

	// Assert
	if empty != "" || got != "abc" {
		t.Fatalf("empty=%q got=%q", empty, got)
	}
}

func TestMaskData_Slices(t *testing.T) {
	// Act
	got := MaskData([]any{map[string]any{"Code": "1"}, "x"}, MaskKeys([]string{"code"}))

	// Assert
	list := got.([]any)
	if list[0].(map[string]any)["Code"] != "***" || list[1] != "x" {
		t.Fatalf("unexpected %v", got)
	}
}
