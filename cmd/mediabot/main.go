package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"mediabot/internal/di"
	"mediabot/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVarP(&flags.ConfigPath, "config", "c", "config/config.yaml", "path to the YAML config file")
	flag.BoolVarP(&flags.DebugMode, "debug", "d", false, "mirror logs to the console")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "mediabot: %s\n", err)
		os.Exit(1)
	}
}
