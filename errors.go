package vkcube

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

var (
	ErrNoSuitableDevice      = errors.New("no suitable physical device")
	ErrNoSuitableMemoryType  = errors.New("no suitable memory type")
	ErrUnsupportedTransition = errors.New("unsupported layout transition")
	ErrTooFewImages          = errors.New("swapchain has fewer images than frames in flight")
	ErrInvalidShader         = errors.New("invalid shader bytecode")
)

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

//NewError turns a failing vk.Result into an error annotated with the calling frame.
//Success yields nil so call sites can wrap unconditionally.
func NewError(ret vk.Result) error {
	if ret == vk.Success {
		return nil
	}
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return fmt.Errorf("vulkan error: %s (%d)", vk.Error(ret).Error(), ret)
	}
	frame := newStackFrame(pc)
	return fmt.Errorf("vulkan error: %s (%d) on %s", vk.Error(ret).Error(), ret, frame.String())
}

type stackFrame struct {
	file     string
	line     int
	function string
}

func newStackFrame(pc uintptr) stackFrame {
	frame := stackFrame{function: "unknown"}
	if fn := runtime.FuncForPC(pc); fn != nil {
		frame.file, frame.line = fn.FileLine(pc)
		name := fn.Name()
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		frame.function = name
	}
	return frame
}

func (s stackFrame) String() string {
	if s.file == "" {
		return s.function
	}
	return fmt.Sprintf("%s (%s:%d)", s.function, s.file, s.line)
}

//MissingQueueFamiliesError lists the queue roles a physical device could not satisfy.
type MissingQueueFamiliesError struct {
	Missing []string
}

func (e *MissingQueueFamiliesError) Error() string {
	return "missing queue families: " + strings.Join(e.Missing, ", ")
}

//Fatal runs the finalizers, writes err to the error stream and exits with status 1.
//A nil error is a no-op.
func Fatal(err error, finalizers ...func()) {
	if err == nil {
		return
	}
	for _, fn := range finalizers {
		fn()
	}
	fatalLogger(os.Stderr).Println(err)
	os.Exit(1)
}

func orPanic(err error) {
	if err != nil {
		panic(err)
	}
}

func checkErr(err *error) {
	if v := recover(); v != nil {
		if e, ok := v.(error); ok {
			*err = e
			return
		}
		*err = fmt.Errorf("%+v", v)
	}
}
