package certification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusForProgress(t *testing.T) {
	assert.Equal(t, StatusPending, StatusForProgress(0))
	assert.Equal(t, StatusInProgress, StatusForProgress(1))
	assert.Equal(t, StatusInProgress, StatusForProgress(99))
	assert.Equal(t, StatusCompleted, StatusForProgress(100))
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus(" completed ")
	assert.True(t, ok)
	assert.Equal(t, StatusCompleted, s)
	_, ok = ParseStatus("done")
	assert.False(t, ok)
}

func TestIssued(t *testing.T) {
	var c *Certification
	assert.False(t, c.Issued())
	empty := ""
	assert.False(t, (&Certification{URLImage: &empty}).Issued())
	img := "ipfs://Qm"
	assert.True(t, (&Certification{URLImage: &img}).Issued())
}
