package main

import (
	"context"
	"flag"
	"runtime"

	"github.com/andewx/vkcube"
)

var configPath = flag.String("config", "vkcube.toml", "TOML configuration file, defaults are used when it does not exist")

func init() {
	//GLFW and the Vulkan surface must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	flag.Parse()

	cfg, err := vkcube.LoadConfigIfExists(*configPath)
	vkcube.Fatal(err)

	logs, err := vkcube.NewLoggers(cfg.LogDir)
	vkcube.Fatal(err)

	err = vkcube.Run(context.Background(), cfg, logs)
	if err != nil && cfg.LogDir != "" {
		logs.Error.Printf("%+v", err)
	}
	vkcube.Fatal(err, logs.Close)
	logs.Close()
}
