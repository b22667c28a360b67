package config

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/pflag"
)

func TestLoadWithNoFileOrFlagsReturnsDefaults(t *testing.T) {
	Convey("Loading with an empty path and no flags yields the built-in defaults", t, func() {
		cfg, err := Load("", nil)
		So(err, ShouldBeNil)
		So(cfg, ShouldResemble, Defaults())
	})
}

func TestLoadAppliesFlagOverrides(t *testing.T) {
	Convey("A flag explicitly set on the command line overrides the default", t, func() {
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.Float64("p_handoff", 0.0, "")
		flags.Int("n_events", 470000, "")
		So(flags.Set("p_handoff", "0.15"), ShouldBeNil)

		cfg, err := Load("", flags)
		So(err, ShouldBeNil)
		So(cfg.PHandoff, ShouldEqual, 0.15)
		So(cfg.NEvents, ShouldEqual, 470000)
	})
}
