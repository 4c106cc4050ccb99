package utils

import (
	"bytes"
	"context"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatYuan(t *testing.T) {
	assert.Equal(t, "CNY 0.00", FormatYuan(0))
	assert.Equal(t, "CNY 12,500.50", FormatYuan(12500.5))
	assert.Equal(t, "-CNY 1,000.00", FormatYuan(-1000))
}

func TestParseYuan(t *testing.T) {
	v, err := ParseYuan("CNY 1,250.75")
	assert.NoError(t, err)
	assert.InDelta(t, 1250.75, v, 0.001)

	v, err = ParseYuan("¥300")
	assert.NoError(t, err)
	assert.InDelta(t, 300, v, 0.001)

	_, err = ParseYuan("  ")
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"hiking", "food", "museums"}, SplitList("Hiking, food;;\nMuseums "))
	assert.Empty(t, SplitList(""))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2025-05-01 ")
	assert.NoError(t, err)
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, time.May, d.Month())

	_, err = ParseDate("01/05/2025")
	assert.Error(t, err)
}

func TestLogEventCtxIncludesRequestID(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	ctx := WithRequestID(context.Background(), "rid-42")
	LogEventCtx(ctx, "trips", "create", "boom")

	line := buf.String()
	assert.True(t, strings.Contains(line, "[TRIPS] action=create request_id=rid-42 msg=boom"), line)
	assert.Equal(t, "", RequestIDFrom(context.Background()))
}
