package main

import (
	"flag"

	"github.com/nchorder/nchorder"
)

func main() {
	var opts nchorder.Options
	flag.StringVar(&opts.ConfigPath, "config", "", "path to CONFIG.INI")
	flag.StringVar(&opts.LayoutPath, "layout", "", "path to the persisted layout record")
	flag.StringVar(&opts.SerialPath, "serial", "", "control channel serial port")
	flag.StringVar(&opts.StreamPath, "stream", "", "touch stream serial port")
	flag.StringVar(&opts.ListenAddr, "listen", "", "web surface listen address")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	flag.Parse()

	nchorder.Main(opts)
}
