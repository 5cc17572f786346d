package cli

import (
	"flag"
	"fmt"

	cli "github.com/urfave/cli/v2"
	"k8s.io/klog/v2"
)

// newKlogFlags wires the klog flags that matter for a one-shot tool into urfave.
func newKlogFlags() []cli.Flag {
	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)

	fs.Set("v", "0")
	fs.Set("logtostderr", "true")

	return []cli.Flag{
		&cli.IntFlag{
			Name:    "v",
			Usage:   "number for the log level verbosity (2 logs every pass)",
			EnvVars: []string{"RECSORT_V"},
			Action: func(cctx *cli.Context, v int) error {
				return fs.Set("v", fmt.Sprint(v))
			},
		},
		&cli.StringFlag{
			Name:    "log_file",
			Usage:   "If non-empty, use this log file (no effect when -logtostderr=true)",
			EnvVars: []string{"RECSORT_LOG_FILE"},
			Action: func(cctx *cli.Context, v string) error {
				if v != "" {
					return fs.Set("log_file", v)
				}
				return nil
			},
		},
		&cli.BoolFlag{
			Name:        "logtostderr",
			Usage:       "log to standard error instead of files",
			EnvVars:     []string{"RECSORT_LOGTOSTDERR"},
			DefaultText: "true",
			Action: func(cctx *cli.Context, v bool) error {
				return fs.Set("logtostderr", fmt.Sprint(v))
			},
		},
		&cli.StringFlag{
			Name:    "vmodule",
			Usage:   "comma-separated list of pattern=N settings for file-filtered logging",
			EnvVars: []string{"RECSORT_VMODULE"},
			Action: func(cctx *cli.Context, v string) error {
				if v != "" {
					return fs.Set("vmodule", v)
				}
				return nil
			},
		},
	}
}
