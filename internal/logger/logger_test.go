package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewParsesLevel(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, logrus.DebugLevel, New(&buf, "debug").GetLevel())
	assert.Equal(t, logrus.WarnLevel, New(&buf, " warn ").GetLevel())
	assert.Equal(t, logrus.InfoLevel, New(&buf, "loud").GetLevel())
}

func TestComponentField(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info")
	Component(l, "loader").Info("hello")
	assert.Contains(t, buf.String(), "component=loader")
	assert.Contains(t, buf.String(), "msg=hello")
}
