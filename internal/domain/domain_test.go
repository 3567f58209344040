package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/xela07ax/dash33/internal/domain"
)

func TestParseNetwork(t *testing.T) {
	Convey("Given network names", t, func() {
		Convey("Mainnet aliases should resolve to bitcoin", func() {
			for _, alias := range []string{"bitcoin", "mainnet", "Main", " MAINNET "} {
				n, err := domain.ParseNetwork(alias)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, domain.NetworkBitcoin)
			}
		})

		Convey("Test networks should keep their names", func() {
			n, err := domain.ParseNetwork("signet")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, domain.NetworkSignet)

			n, err = domain.ParseNetwork("testnet3")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, domain.NetworkTestnet)
		})

		Convey("Unknown names should fail", func() {
			_, err := domain.ParseNetwork("litecoin")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestAnalyticsLevelText(t *testing.T) {
	Convey("Given an analytics level in JSON", t, func() {
		var cfg struct {
			Level domain.AnalyticsLevel `json:"level"`
		}

		Convey("Lowercase input should decode to the canonical form", func() {
			So(json.Unmarshal([]byte(`{"level":"expert"}`), &cfg), ShouldBeNil)
			So(cfg.Level, ShouldEqual, domain.AnalyticsExpert)

			out, err := json.Marshal(cfg)
			So(err, ShouldBeNil)
			So(string(out), ShouldEqual, `{"level":"Expert"}`)
		})

		Convey("Unknown levels should be rejected", func() {
			So(json.Unmarshal([]byte(`{"level":"godlike"}`), &cfg), ShouldNotBeNil)
		})
	})
}

func TestMetricUpdateDecode(t *testing.T) {
	Convey("Given an update payload with a timestamp", t, func() {
		var u domain.MetricUpdate
		err := json.Unmarshal([]byte(`{"metric_type":"x","value":-5,"timestamp":"2024-01-02T03:04:05Z"}`), &u)

		Convey("It should decode every field", func() {
			So(err, ShouldBeNil)
			So(u.MetricType, ShouldEqual, "x")
			So(u.IsNegative(), ShouldBeTrue)
			So(u.Timestamp, ShouldNotBeNil)
			So(u.Timestamp.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)), ShouldBeTrue)
		})
	})
}
