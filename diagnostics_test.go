package vkcube

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestDebugCallbackNeverAborts(t *testing.T) {
	var buf bytes.Buffer
	SetDiagnosticsOutput(&buf)
	defer SetDiagnosticsOutput(os.Stderr)

	ret := dbgCallbackFunc(vk.DebugReportFlags(vk.DebugReportErrorBit), 0, 0, 0, 42,
		"Validation", "vkCmdDraw: something went wrong", nil)

	assert.Equal(t, vk.Bool32(vk.False), ret)
	assert.Contains(t, buf.String(), "ERROR: [Validation] Code 42 : vkCmdDraw: something went wrong")
}

func TestSeverityName(t *testing.T) {
	assert.Equal(t, "WARNING", severityName(vk.DebugReportFlags(vk.DebugReportWarningBit)))
	assert.Equal(t, "PERFORMANCE WARNING", severityName(vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit)))
	assert.Equal(t, "DEBUG", severityName(vk.DebugReportFlags(vk.DebugReportDebugBit)))
	assert.Equal(t, "INFORMATION", severityName(0))
}
