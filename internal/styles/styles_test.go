package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	assert.Contains(t, Status("ok"), "OK")
	assert.Contains(t, Status("out-of-range"), "OUT OF RANGE")
	assert.Contains(t, Status("invalid"), "INVALID")
	assert.Contains(t, Status("error"), "error")
}

func TestResultBox(t *testing.T) {
	out := ResultBox.Render("4 mm² / 20 A")
	assert.Contains(t, out, "4 mm² / 20 A")
	assert.Contains(t, out, "╔")
}
