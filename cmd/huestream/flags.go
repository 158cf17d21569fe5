package main

import (
	"flag"
	"strconv"
	"strings"

	"github.com/nerrad567/huestream/internal/infrastructure/config"
)

// options holds command-line flags. Zero values leave the configuration
// untouched, so flags only override what was set explicitly.
type options struct {
	configPath  string
	bridge      string
	identity    string
	psk         string
	source      string
	duration    int
	rate        float64
	supersample int
	lights      lightList
	showVersion bool
}

// lightList collects -light flags. Each value may itself be a comma list.
type lightList []int

func (l *lightList) String() string {
	if l == nil {
		return ""
	}
	parts := make([]string, len(*l))
	for i, id := range *l {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func (l *lightList) Set(v string) error {
	ids, err := config.ParseLights(v)
	if err != nil {
		return err
	}
	*l = append(*l, ids...)
	return nil
}

// parseFlags parses args into options.
//
// Returns:
//   - *options: Parsed flags
//   - error: flag.ErrHelp for -h, or a parse error
func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("huestream", flag.ContinueOnError)

	fs.StringVar(&opts.configPath, "config", "", "path to YAML configuration file (env HUESTREAM_CONFIG)")
	fs.StringVar(&opts.bridge, "bridge", "", "bridge hostname or IP address; discovered over mDNS when empty")
	fs.StringVar(&opts.identity, "identity", "", "entertainment application identity (bridge username)")
	fs.StringVar(&opts.psk, "psk", "", "pre-shared key, 32 hexadecimal characters")
	fs.StringVar(&opts.source, "source", "", "colour source: sequence, capture or mqtt")
	fs.IntVar(&opts.duration, "duration", 0, "stop after this many seconds (0 runs until interrupted)")
	fs.Float64Var(&opts.rate, "rate", 0, "colour update rate in Hz")
	fs.IntVar(&opts.supersample, "supersample", 0, "interpolated frames per colour update")
	fs.Var(&opts.lights, "light", "light id to stream to; repeat or comma-separate for several")
	fs.BoolVar(&opts.showVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// apply copies explicitly set flags onto cfg. It runs after environment
// overrides, so flags take precedence.
func (o *options) apply(cfg *config.Config) {
	if o.bridge != "" {
		cfg.Bridge.Host = o.bridge
	}
	if o.identity != "" {
		cfg.Bridge.Identity = o.identity
	}
	if o.psk != "" {
		cfg.Bridge.PSK = o.psk
	}
	if o.source != "" {
		cfg.Stream.Source = o.source
	}
	if o.duration > 0 {
		cfg.Stream.Duration = o.duration
	}
	if o.rate > 0 {
		cfg.Stream.RateHz = o.rate
	}
	if o.supersample > 0 {
		cfg.Stream.Supersample = o.supersample
	}
	if len(o.lights) > 0 {
		cfg.Stream.Lights = append([]int(nil), o.lights...)
	}
}
