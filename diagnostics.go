package vkcube

import (
	"io"
	"log"
	"os"
	"sync"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

//The debug report callback cannot carry a Go pointer through pUserData, so the
//destination stream is package state behind a lock.
var (
	diagMu  sync.Mutex
	diagLog = log.New(os.Stderr, "", log.Ldate|log.Ltime)
)

//SetDiagnosticsOutput redirects validation layer messages to w.
func SetDiagnosticsOutput(w io.Writer) {
	diagMu.Lock()
	defer diagMu.Unlock()
	diagLog = log.New(w, "", log.Ldate|log.Ltime)
}

func newDebugCallback(instance vk.Instance) (vk.DebugReportCallback, error) {
	var callback vk.DebugReportCallback
	ret := vk.CreateDebugReportCallback(instance, &vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
			vk.DebugReportPerformanceWarningBit),
		PfnCallback: dbgCallbackFunc,
	}, nil, &callback)
	if isError(ret) {
		return vk.NullDebugReportCallback, NewError(ret)
	}
	return callback, nil
}

func severityName(flags vk.DebugReportFlags) string {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return "ERROR"
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		return "WARNING"
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		return "PERFORMANCE WARNING"
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		return "DEBUG"
	default:
		return "INFORMATION"
	}
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	diagMu.Lock()
	out := diagLog
	diagMu.Unlock()

	severity := severityName(flags)
	out.Printf("%s[%s] Code %d : %s", severityLabel(out.Writer(), severity, "5"), pLayerPrefix, messageCode, pMessage)
	return vk.Bool32(vk.False)
}
