package main

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix names the environment variables that supply defaults for
// the long flags, e.g. BBAWK_SHELL=builtin or BBAWK_DEBUG=1.
const envPrefix = "BBAWK"

// settings are the options that may come from the environment as well
// as from flags. An explicit flag wins.
type settings struct {
	Shell string
	Debug bool
}

func loadSettings(flags *pflag.FlagSet) (settings, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("shell", "")
	v.SetDefault("debug", false)
	for _, name := range []string{"shell", "debug"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			return settings{}, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	return settings{
		Shell: v.GetString("shell"),
		Debug: v.GetBool("debug"),
	}, nil
}
